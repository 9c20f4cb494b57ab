package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/auth"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/config"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			token, err := auth.SignToken(cfg.JWTSecret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to embed")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Lifetime (default token_ttl)")
	return cmd
}
