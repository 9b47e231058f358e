package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hive",
		Short:        "Character persistence service for game servers",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newTokenCmd())
	return root
}

// newLogger builds the process logger from LOG_* variables.
func newLogger() (*zap.Logger, error) {
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return lg, nil
}
