package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configFixture = `global:
  api_endpoint: https://darwin.v7labs.com/api/
  base_url: https://darwin.v7labs.com
  default_team: team-a
teams:
  team-a:
    api_key: 1ed99664-726e-4400-bc5d-3132b22ce60c
    datasets_dir: /home/user/.v7/team-a
  team-b:
    api_key: 7ab54664-726e-4401-bc5d-3132b22ce60d
`

func TestParseConfig(t *testing.T) {
	cfg, err := Parse([]byte(configFixture))
	require.NoError(t, err)

	assert.Equal(t, "https://darwin.v7labs.com/api/", cfg.APIEndpoint)
	assert.Equal(t, "https://darwin.v7labs.com", cfg.BaseURL)
	assert.Equal(t, "team-a", cfg.DefaultTeam)
	require.Len(t, cfg.Teams, 2)

	teamA := cfg.Teams["team-a"]
	assert.Equal(t, "team-a", teamA.Slug)
	assert.Equal(t, "1ed99664-726e-4400-bc5d-3132b22ce60c", teamA.APIKey)
	assert.Equal(t, "/home/user/.v7/team-a", teamA.DatasetsDir)

	teamB := cfg.Teams["team-b"]
	assert.Equal(t, "team-b", teamB.Slug)
	assert.Empty(t, teamB.DatasetsDir)
}

func TestParseConfigMissingFields(t *testing.T) {
	cases := map[string]string{
		"api_endpoint": "global:\n  base_url: https://x\n  default_team: a\n",
		"base_url":     "global:\n  api_endpoint: https://x\n  default_team: a\n",
		"default_team": "global:\n  api_endpoint: https://x\n  base_url: https://x\n",
	}
	for missing, doc := range cases {
		_, err := Parse([]byte(doc))
		require.Error(t, err, missing)
		assert.ErrorIs(t, err, ErrInvalidConfig, missing)
		assert.Contains(t, err.Error(), missing)
	}
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("global: [unbalanced"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAPIKeyFor(t *testing.T) {
	cfg, err := Parse([]byte(configFixture))
	require.NoError(t, err)

	key, err := cfg.APIKeyFor("team-b")
	require.NoError(t, err)
	assert.Equal(t, "7ab54664-726e-4401-bc5d-3132b22ce60d", key)

	// Empty slug falls back to the default team.
	key, err = cfg.APIKeyFor("")
	require.NoError(t, err)
	assert.Equal(t, "1ed99664-726e-4400-bc5d-3132b22ce60c", key)

	_, err = cfg.APIKeyFor("team-c")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DARWIN_TEAM", "team-b")
	t.Setenv("DARWIN_API_KEY", "env-key")

	cfg, err := Parse([]byte(configFixture))
	require.NoError(t, err)

	assert.Equal(t, "team-b", cfg.DefaultTeam)
	key, err := cfg.APIKeyFor("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)

	// team-a keeps its file key.
	key, err = cfg.APIKeyFor("team-a")
	require.NoError(t, err)
	assert.Equal(t, "1ed99664-726e-4400-bc5d-3132b22ce60c", key)
}

func TestEnvOverrideCreatesTeam(t *testing.T) {
	t.Setenv("DARWIN_TEAM", "team-z")
	t.Setenv("DARWIN_API_KEY", "zed-key")

	cfg, err := Parse([]byte(configFixture))
	require.NoError(t, err)

	key, err := cfg.APIKeyFor("team-z")
	require.NoError(t, err)
	assert.Equal(t, "zed-key", key)
}
