// Package cmd implements the yucabot command line interface.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "yucabot",
	Short: "YucaBot - document Q&A grounded in your own content",
	Long: `YucaBot ingests documents, stores their embeddings in PostgreSQL
with pgvector, and answers natural-language questions grounded in the
retrieved passages.

Run "yucabot serve" to start the HTTP API, or use the one-shot ingest
and query commands.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// Credentials commonly live in a local .env; absence is fine.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
