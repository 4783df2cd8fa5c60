package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklin-ai/darwin-v7/pkg/config"
)

type echo struct {
	Message string `json:"message"`
}

func TestClientHeaders(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	c := New(server.URL+"/", "test-key", "test-team")
	resp, err := c.Get(context.Background(), "datasets")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, got)
	assert.Equal(t, "ApiKey test-key", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "/datasets", got.URL.Path)
}

func TestClientTeam(t *testing.T) {
	c := New("https://darwin.v7labs.com/api", "key", "my-team")
	assert.Equal(t, "my-team", c.Team())
	assert.Equal(t, "https://darwin.v7labs.com/api", c.APIEndpoint())
}

func TestDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"hello"}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", "team")
	resp, err := c.Get(context.Background(), "anything")
	require.NoError(t, err)

	decoded, err := Decode[echo](resp, http.StatusOK)
	require.NoError(t, err)
	assert.Equal(t, "hello", decoded.Message)
}

func TestDecodeStatusMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"name":["has already been taken"]}}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", "team")
	resp, err := c.Post(context.Background(), "datasets", map[string]string{"name": "dup"})
	require.NoError(t, err)

	_, err = Decode[echo](resp, http.StatusOK)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "already been taken")
	assert.Contains(t, apiErr.Error(), "422")
}

func TestDecodeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New(server.URL, "key", "team")
	resp, err := c.Get(context.Background(), "x")
	require.NoError(t, err)

	_, err = Decode[echo](resp, http.StatusOK)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestExpectStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("nope"))
	}))
	defer server.Close()

	c := New(server.URL, "key", "team")

	resp, err := c.Delete(context.Background(), "annotation_classes/1", nil)
	require.NoError(t, err)
	assert.NoError(t, ExpectStatus(resp, http.StatusNoContent))

	resp, err = c.Get(context.Background(), "annotation_classes/1")
	require.NoError(t, err)
	err = ExpectStatus(resp, http.StatusOK)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "nope", apiErr.Body)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		APIEndpoint: "https://darwin.v7labs.com/api/",
		BaseURL:     "https://darwin.v7labs.com",
		DefaultTeam: "team-a",
		Teams: map[string]config.Team{
			"team-a": {Slug: "team-a", APIKey: "key-a"},
			"team-b": {Slug: "team-b"},
		},
	}

	c, err := FromConfig(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "team-a", c.Team())
	assert.Equal(t, "https://darwin.v7labs.com/api", c.APIEndpoint())

	_, err = FromConfig(cfg, "team-b")
	require.Error(t, err) // no api key
	_, err = FromConfig(cfg, "missing")
	require.Error(t, err)
}
