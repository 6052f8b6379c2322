package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/sharebox/internal/ui/client"
)

const defaultServer = "http://127.0.0.1:5000"

type globalOptions struct {
	server   string
	password string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "sharectl",
		Short: "Command-line client for a ShareBox server",
		Long: `sharectl lists, uploads and deletes shared files and reads or
replaces the shared text on a ShareBox server.

The server URL and password default to $SHAREBOX_URL and
$SHAREBOX_PASSWORD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SHAREBOX_URL", defaultServer), "ShareBox server URL")
	root.PersistentFlags().StringVar(&opts.password, "password", os.Getenv("SHAREBOX_PASSWORD"), "shared password")

	root.AddCommand(
		newListCmd(opts),
		newUploadCmd(opts),
		newRemoveCmd(opts),
		newTextCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

// connect builds a client and logs in.
func (o *globalOptions) connect(ctx context.Context) (*client.Client, error) {
	if strings.TrimSpace(o.password) == "" {
		return nil, fmt.Errorf("no password: pass --password or set SHAREBOX_PASSWORD")
	}
	c, err := client.New(o.server, client.WithUserAgent("sharectl"))
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, o.password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
