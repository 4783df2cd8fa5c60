package client

import (
	"github.com/franklin-ai/darwin-v7/pkg/config"
)

// FromConfig builds a client for the named team out of a parsed config
// file. An empty slug selects the config's default team.
func FromConfig(cfg *config.Config, slug string, opts ...Option) (*Client, error) {
	if slug == "" {
		slug = cfg.DefaultTeam
	}
	key, err := cfg.APIKeyFor(slug)
	if err != nil {
		return nil, err
	}
	return New(cfg.APIEndpoint, key, slug, opts...), nil
}
