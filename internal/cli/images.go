package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"folio/internal/models"
)

// imageAddParams holds the flags of "image add".
type imageAddParams struct {
	key    string
	title  string
	alt    string
	width  int
	height int
}

func newImageCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage the image library",
	}
	cmd.AddCommand(newImageAddCmd(open), newImageShowCmd(open), newImageRemoveCmd(open))
	return cmd
}

func newImageAddCmd(open Opener) *cobra.Command {
	var params imageAddParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an object already uploaded to the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img := &models.Image{
				Title:  params.title,
				S3Key:  params.key,
				Width:  params.width,
				Height: params.height,
			}
			if cmd.Flags().Changed("alt") {
				img.Alt = &params.alt
			}
			return withServices(cmd, open, func(ctx context.Context, svc *Services) error {
				created, err := svc.Library.Add(ctx, img)
				if err != nil {
					return err
				}
				printImage(cmd.OutOrStdout(), created)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.key, "key", "", "Object key in the bucket (required)")
	cmd.Flags().StringVar(&params.title, "title", "", "Image title (required)")
	cmd.Flags().StringVar(&params.alt, "alt", "", "Alt text, defaults to the title")
	cmd.Flags().IntVar(&params.width, "width", 0, "Width in pixels")
	cmd.Flags().IntVar(&params.height, "height", 0, "Height in pixels")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newImageShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <image-id>",
		Short: "Print the metadata of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("image", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, open, func(ctx context.Context, svc *Services) error {
				img, err := svc.Library.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("image %s: %w", id, err)
				}
				printImage(cmd.OutOrStdout(), img)
				return nil
			})
		},
	}
}

func newImageRemoveCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <image-id>",
		Aliases: []string{"remove"},
		Short:   "Delete an image record (the object stays in the bucket)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("image", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, open, func(ctx context.Context, svc *Services) error {
				if err := svc.Library.Remove(ctx, id); err != nil {
					return fmt.Errorf("image %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed image %s\n", id)
				return nil
			})
		},
	}
}

func printImage(w io.Writer, img *models.Image) {
	fmt.Fprintf(w, "%s  %s  %q  alt=%q  %dx%d\n", img.ID, img.S3Key, img.Title, img.AltText(), img.Width, img.Height)
}
