package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"folio/internal/models"
)

// visibilityChange applies one flag change through the publisher.
type visibilityChange func(ctx context.Context, svc *Services, id uuid.UUID) (*models.Page, error)

func setLive(live bool) visibilityChange {
	return func(ctx context.Context, svc *Services, id uuid.UUID) (*models.Page, error) {
		return svc.Publisher.SetLive(ctx, id, live)
	}
}

func setRestricted(restricted bool) visibilityChange {
	return func(ctx context.Context, svc *Services, id uuid.UUID) (*models.Page, error) {
		return svc.Publisher.SetRestricted(ctx, id, restricted)
	}
}

// newVisibilityCmd creates one of the publish/unpublish/restrict/unrestrict
// subcommands.
func newVisibilityCmd(open Opener, name, short string, change visibilityChange) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <page-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("page", args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, open, func(ctx context.Context, svc *Services) error {
				page, err := change(ctx, svc, id)
				if err != nil {
					return fmt.Errorf("%s %s: %w", name, id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %q (%s): live=%t restricted=%t visible=%t\n",
					page.Type, page.Title, page.ID, page.Live, page.Restricted, page.IsVisible())
				return nil
			})
		},
	}
}
