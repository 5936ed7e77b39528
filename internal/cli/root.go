// Package cli implements folioctl, the maintenance command line of the
// site. It changes page visibility and the image library without an admin
// UI; the server picks the changes up on the next request.
package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"folio/internal/publish"
)

// Services are what the commands act on.
type Services struct {
	Publisher *publish.Publisher
	Library   *publish.Library
}

// Opener connects the services for one command run. The returned function
// releases them.
type Opener func(ctx context.Context) (*Services, func(), error)

// NewRootCmd creates the folioctl root command. open is called lazily, so
// help and argument errors never touch the database.
func NewRootCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folioctl",
		Short: "Maintain a running folio site",
		Long: `folioctl publishes and hides pages and registers images whose files
were uploaded to the bucket. It reads the same environment as the server.`,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newVisibilityCmd(open, "publish", "Make a page live", setLive(true)),
		newVisibilityCmd(open, "unpublish", "Take a page offline", setLive(false)),
		newVisibilityCmd(open, "restrict", "Hide a page and everything below it from the public", setRestricted(true)),
		newVisibilityCmd(open, "unrestrict", "Lift the view restriction of a page", setRestricted(false)),
		newImageCmd(open),
	)
	return cmd
}

const rootCmdExample = `  # Publish a draft post
  folioctl publish 5f1c0d8e-3b7a-4a5e-9d9f-2f0c6a1b7e42

  # Hide the whole blog section
  folioctl restrict <blog-index-id>

  # Register an uploaded picture
  folioctl image add --key images/cover.jpg --title "Cover" --width 1200 --height 630`

// withServices opens the services, runs fn and releases them.
func withServices(cmd *cobra.Command, open Opener, fn func(ctx context.Context, svc *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, release, err := open(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer release()
	return fn(ctx, svc)
}

// parseID reads a page or image id argument.
func parseID(kind, arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, arg, err)
	}
	return id, nil
}
