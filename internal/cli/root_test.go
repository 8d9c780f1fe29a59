package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "scenesmith", cmd.Use)
	assert.Contains(t, cmd.Long, "SCENESMITH_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "generate", "place", "replay", "runs", "find", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flag    string
		def     string
	}{
		{"compile", "output", ""},
		{"generate", "template", ""},
		{"generate", "id", "1"},
		{"place", "grid", ""},
		{"place", "requests", ""},
		{"place", "attempts", "100"},
		{"place", "first-event-id", "1"},
		{"replay", "db", ""},
		{"runs", "db", ""},
		{"test", "filter", ""},
	}

	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			sub, _, err := NewRootCommand().Find([]string{tt.command})
			require.NoError(t, err)
			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "--format", "xml", "compile", templatesDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("SCENESMITH_FORMAT", "json")

	out, err := executeCommand(t, "compile", templatesDir)
	require.NoError(t, err)
	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "ok", resp.Status)
}

func TestFormatFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("SCENESMITH_FORMAT", "json")

	out, err := executeCommand(t, "--format", "text", "compile", templatesDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled 4 template(s)")
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("SCENESMITH_SEED", "not-a-number")

	_, err := executeCommand(t, "compile", templatesDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
