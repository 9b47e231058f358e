package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/clock"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the hive tables and indexes if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := newLogger()
			if err != nil {
				return err
			}
			defer lg.Sync()
			sugar := lg.Sugar()

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			dbCfg := database.ConfigFromEnv()
			a, err := app.New(dbCfg, cfg, clock.New(), sugar)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := a.EnsureSchema(ctx); err != nil {
				return err
			}
			sugar.Infow("schema ready", "driver", dbCfg.Driver)
			return nil
		},
	}
}
