package main

import (
	"context"
	"fmt"
	"os"

	"creditrisk/internal/config"
	"creditrisk/internal/container"
	"creditrisk/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "creditrisk",
		Short:         "Credit risk data preparation: validate, clean, split and evaluate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newPrepareCmd(),
		newEvaluateCmd(),
		newGenerateCmd(),
		newRunsCmd(),
		newReportCmd(),
		newArtifactsCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

// openContainer loads configuration from the environment and wires the
// services. The caller must Shutdown the container.
func openContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.Open(ctx, cfg, logging.NewDefault())
}

// withContainer runs fn against a freshly opened container
func withContainer(ctx context.Context, fn func(*container.Container) error) error {
	c, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)
	return fn(c)
}
