// Package cli is the storefront command tree: the API server, its admin
// helpers and a terminal checkout client.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/client"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	stateDir   string
	serverURL  string
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront checkout API and client",
		Long: `storefront serves the checkout and order API and drives it from the terminal.

Server commands read configuration from .env, an optional YAML file and the
environment. Client commands keep the cart and login under --state-dir.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $STOREFRONT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.stateDir, "state-dir", defaultStateDir(), "Directory for client cart and login state")
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", envOr("STOREFRONT_URL", "http://localhost:8080"), "Storefront API base URL")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	rootCmd.AddCommand(newTokenCmd(opts))
	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newProfileCmd(opts))
	rootCmd.AddCommand(newCartCmd(opts))
	rootCmd.AddCommand(newCheckoutCmd(opts))
	rootCmd.AddCommand(newOrdersCmd(opts))
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(dir, "storefront")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// clientState opens the persisted cart and session.
func (o *options) clientState() (*client.Cart, *client.Session, error) {
	storage, err := client.NewFileStorage(o.stateDir)
	if err != nil {
		return nil, nil, err
	}
	cart, err := client.LoadCart(storage)
	if err != nil {
		return nil, nil, err
	}
	session := client.NewSession(storage, cart)
	if err := session.Start(); err != nil {
		return nil, nil, err
	}
	return cart, session, nil
}
