package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaven/matchgrid/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "matchgrid")
	assert.Contains(t, out, Version)
}

func TestHeatmapCommand_RequiresBounds(t *testing.T) {
	_, err := execute(t, "heatmap")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidBounds))
}

func TestHeatmapCommand_RejectsBadMode(t *testing.T) {
	_, err := execute(t, "heatmap", "--bounds", "37.0,-123.0,38.5,-121.0", "--mode", "volcano")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidMode))
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	t.Setenv("MATCHGRID_DATABASE_HOST", "localhost")
	_, err := execute(t, "migrate", "down", "--steps", "0")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"match", "heatmap", "migrate", "version"} {
		assert.True(t, names[want], "missing %q subcommand", want)
	}
}
