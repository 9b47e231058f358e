package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/config"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <server-name>",
		Short: "Issue a bearer token for a game server (requires HIVE_JWT_SECRET)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("HIVE_JWT_SECRET is not set")
			}
			tok, err := auth.IssueServerToken([]byte(cfg.JWTSecret), args[0], ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry")
	return cmd
}
