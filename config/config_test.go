package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "scripts", cfg.ScriptsPath)
	assert.Equal(t, "personas.yaml", cfg.PersonasPath)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "/graphql", cfg.GraphQLPath)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, uint64(30), cfg.Timeout)
	assert.Equal(t, 0, cfg.Retries)
	assert.False(t, cfg.Parallel)
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "local", env: "local", want: "http://localhost:3000"},
		{name: "staging", env: "staging", want: "https://staging-api.musclemap.me"},
		{name: "production", env: "production", want: "https://api.musclemap.me"},
		{name: "explicit override wins", env: "local", baseURL: "http://127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "unknown env", env: "qa", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Env: tt.env, BaseURL: tt.baseURL}
			got, err := cfg.ResolveBaseURL()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "staging", "error names the valid environments")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range Formats {
		cfg := &Config{Format: f}
		assert.NoError(t, cfg.ValidateFormat())
	}

	cfg := &Config{Format: "pdf"}
	err := cfg.ValidateFormat()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "junit")
}
