package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/clock"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hive HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "ensure-schema", false, "create missing tables before serving")
	return cmd
}

func serve(migrate bool) error {
	lg, err := newLogger()
	if err != nil {
		return err
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	cfg, err := config.FromEnv()
	if err != nil {
		sugar.Errorw("invalid configuration", "err", err)
		return err
	}
	dbCfg := database.ConfigFromEnv()
	sugar.Infow("starting hive", "driver", dbCfg.Driver, "addr", cfg.HTTPAddr,
		"id_field", cfg.IDField, "worldspace_field", cfg.WorldspaceField,
		"increase_generation", cfg.IncreaseGeneration, "auth", cfg.JWTSecret != "")

	a, err := app.New(dbCfg, cfg, clock.New(), sugar)
	if err != nil {
		sugar.Errorw("startup failed", "err", err)
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate {
		if err := a.EnsureSchema(ctx); err != nil {
			sugar.Errorw("schema setup failed", "err", err)
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	var exitErr error
	select {
	case <-ctx.Done():
		sugar.Info("shutting down")
	case err := <-a.Faults.C():
		// storage is broken; stop taking writes
		sugar.Errorw("storage fault, shutting down", "err", err)
		exitErr = err
	case err := <-serveErr:
		sugar.Errorw("http server failed", "err", err)
		exitErr = err
	}

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "err", err)
	}
	sugar.Info("goodbye")
	return exitErr
}
