// Package cli implements menuctl, the admin-side command line for the menu
// sync endpoint.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sweetyshop/internal/syncclient"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Server string
	Key    string
}

func (o *RootOptions) client() (*syncclient.Client, error) {
	if strings.TrimSpace(o.Server) == "" {
		return nil, fmt.Errorf("no server: pass --server or set MENU_SERVER_URL")
	}
	return syncclient.New(o.Server, o.Key), nil
}

// NewRootCommand creates the menuctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "menuctl",
		Short: "Push and pull the shop menu",
		Long:  "menuctl sends menu updates to the storefront server and reads back what customers see.",
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", os.Getenv("MENU_SERVER_URL"), "storefront base URL (env MENU_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&opts.Key, "key", os.Getenv("SYNC_KEY"), "connection key (env SYNC_KEY)")

	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewPullCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand())

	return cmd
}
