package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yucabot/yucabot/internal/app"
	"github.com/yucabot/yucabot/internal/config"
	"github.com/yucabot/yucabot/internal/log"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Store one document in the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: slog.LevelWarn})
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied CLI argument
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	rawText, err := a.Registry.Extract(ctx, data, "", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	result, err := a.Pipeline.Ingest(ctx, rawText)
	if err != nil {
		return err
	}

	fmt.Printf("Stored %s\n", result.ID)
	fmt.Printf("  content length: %d\n", result.StoredLength)
	fmt.Printf("  dimensions:     %d\n", result.Dimensions)
	return nil
}
