package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"host", "port", "display-limit", "max-upload-mb", "no-browser"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewShellCommand(t *testing.T) {
	cmd := NewShellCommand()

	assert.Equal(t, "shell [files...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"format", "display-limit"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "table", cmd.Flags().Lookup("format").DefValue)
}

func TestGenerateSessionSecret(t *testing.T) {
	a, err := generateSessionSecret()
	assert.NoError(t, err)
	b, err := generateSessionSecret()
	assert.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
