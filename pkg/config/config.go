// Package config reads the Darwin CLI configuration file: a YAML
// document with a global block and one block per team:
//
//	global:
//	  api_endpoint: https://darwin.v7labs.com/api/
//	  base_url: https://darwin.v7labs.com
//	  default_team: team-a
//	teams:
//	  team-a:
//	    api_key: 1ed99664-726e-4400-bc5d-3132b22ce60c
//	    datasets_dir: /home/user/.v7/team-a
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig flags a config file that is unreadable or missing
// required fields.
var ErrInvalidConfig = errors.New("invalid config")

// Team is one team block of the config file. APIKey and DatasetsDir are
// optional; a team without an api_key cannot back a client.
type Team struct {
	Slug        string `yaml:"-"`
	APIKey      string `yaml:"api_key"`
	DatasetsDir string `yaml:"datasets_dir"`
}

// Config is the parsed Darwin configuration.
type Config struct {
	BaseURL     string
	APIEndpoint string
	DefaultTeam string
	Teams       map[string]Team
}

type rawConfig struct {
	Global struct {
		APIEndpoint string `yaml:"api_endpoint"`
		BaseURL     string `yaml:"base_url"`
		DefaultTeam string `yaml:"default_team"`
	} `yaml:"global"`
	Teams map[string]Team `yaml:"teams"`
}

// Parse decodes a config document and applies environment overrides:
// DARWIN_TEAM replaces the default team and DARWIN_API_KEY the default
// team's key.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: unable to parse config file: %v", ErrInvalidConfig, err)
	}
	if raw.Global.APIEndpoint == "" {
		return nil, fmt.Errorf("%w: missing 'api_endpoint' from config", ErrInvalidConfig)
	}
	if raw.Global.BaseURL == "" {
		return nil, fmt.Errorf("%w: missing 'base_url' from config", ErrInvalidConfig)
	}
	if raw.Global.DefaultTeam == "" {
		return nil, fmt.Errorf("%w: missing 'default_team' from config", ErrInvalidConfig)
	}

	cfg := &Config{
		BaseURL:     raw.Global.BaseURL,
		APIEndpoint: raw.Global.APIEndpoint,
		DefaultTeam: raw.Global.DefaultTeam,
		Teams:       make(map[string]Team, len(raw.Teams)),
	}
	for slug, team := range raw.Teams {
		team.Slug = slug
		cfg.Teams[slug] = team
	}

	if team := os.Getenv("DARWIN_TEAM"); team != "" {
		cfg.DefaultTeam = team
	}
	if key := os.Getenv("DARWIN_API_KEY"); key != "" {
		team, ok := cfg.Teams[cfg.DefaultTeam]
		if !ok {
			team = Team{Slug: cfg.DefaultTeam}
		}
		team.APIKey = key
		cfg.Teams[cfg.DefaultTeam] = team
	}

	return cfg, nil
}

// FromFile loads a config file, after loading a .env file if one exists
// next to the working directory.
func FromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read config file: %v", ErrInvalidConfig, err)
	}
	return Parse(data)
}

// APIKeyFor returns the API key of the named team, or of the default
// team when the slug is empty.
func (c *Config) APIKeyFor(slug string) (string, error) {
	if slug == "" {
		slug = c.DefaultTeam
	}
	team, ok := c.Teams[slug]
	if !ok {
		return "", fmt.Errorf("%w: team %q not found in config", ErrInvalidConfig, slug)
	}
	if team.APIKey == "" {
		return "", fmt.Errorf("%w: api key not found for team %q", ErrInvalidConfig, slug)
	}
	return team.APIKey, nil
}
