package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Seed: 1, Attempts: 100, FirstEventID: 1, Format: "text"}, cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCENESMITH_SEED", "18446744073709551615")
	t.Setenv("SCENESMITH_DB", "/tmp/runs.db")
	t.Setenv("SCENESMITH_ATTEMPTS", "25")
	t.Setenv("SCENESMITH_FIRST_EVENT_ID", "7")
	t.Setenv("SCENESMITH_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), cfg.Seed)
	assert.Equal(t, "/tmp/runs.db", cfg.DB)
	assert.Equal(t, 25, cfg.Attempts)
	assert.Equal(t, 7, cfg.FirstEventID)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"seed not a number", "SCENESMITH_SEED", "abc", "parse env:"},
		{"zero attempts", "SCENESMITH_ATTEMPTS", "0", "SCENESMITH_ATTEMPTS"},
		{"negative first id", "SCENESMITH_FIRST_EVENT_ID", "-1", "SCENESMITH_FIRST_EVENT_ID"},
		{"bad format", "SCENESMITH_FORMAT", "xml", "SCENESMITH_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
