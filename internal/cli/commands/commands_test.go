package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGenerateCommand(t *testing.T) {
	cmd := NewGenerateCommand()

	assert.Equal(t, "generate", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"remove", "replace", "insert", "antisite", "dry-run", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	assert.Equal(t, "gen", cmd.Aliases[0], "generate command should have 'gen' alias")
}

func TestNewReportCommand(t *testing.T) {
	cmd := NewReportCommand()

	assert.Equal(t, "report", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("save"), "--save flag should exist")

	// Note: --output flag is a global persistent flag on root command, not local to report
}
