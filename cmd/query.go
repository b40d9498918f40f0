package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yucabot/yucabot/internal/app"
	"github.com/yucabot/yucabot/internal/config"
	"github.com/yucabot/yucabot/internal/log"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a question from the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(ctx context.Context, question string) error {
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

	result, err := a.Pipeline.Query(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range result.Sources {
			fmt.Printf("  %s (similarity %.2f)\n", s.ID, s.Similarity)
		}
	}
	return nil
}
