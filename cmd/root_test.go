package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "ingest", "query", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestIngestRequiresFileArgument(t *testing.T) {
	err := ingestCmd.Args(ingestCmd, []string{})
	assert.Error(t, err)

	err = ingestCmd.Args(ingestCmd, []string{"doc.txt"})
	assert.NoError(t, err)
}

func TestQueryRequiresQuestion(t *testing.T) {
	err := queryCmd.Args(queryCmd, []string{})
	assert.Error(t, err)

	err = queryCmd.Args(queryCmd, []string{"when", "does", "it", "open"})
	assert.NoError(t, err)
}
