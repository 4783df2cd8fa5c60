package client

import (
	"context"
	"net/http"
)

// Methods is the uniform contract the Darwin REST API is driven through.
// Endpoints are given relative to the configured API root; every call is
// authenticated with the client's API key.
type Methods interface {
	Get(ctx context.Context, endpoint string) (*http.Response, error)
	Post(ctx context.Context, endpoint string, body any) (*http.Response, error)
	Put(ctx context.Context, endpoint string, body any) (*http.Response, error)
	Delete(ctx context.Context, endpoint string, body any) (*http.Response, error)

	// Team returns the team slug the client operates as, used by the
	// v2 endpoints that scope resources by team.
	Team() string
}
