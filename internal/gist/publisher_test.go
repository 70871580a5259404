package gist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbox/malbox/internal/mal"
)

func newTestPublisher(t *testing.T, handler http.HandlerFunc) *Publisher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	pub, err := NewPublisher(Config{
		ID:       "abc123",
		Token:    "test-token",
		BaseURL:  srv.URL,
		Filename: "🍖 MAL anime I'm currently watching",
	}, nil)
	require.NoError(t, err)
	return pub
}

// TestPublishFullReplace checks the edit targets the right gist and carries
// the whole rendered block as the file's new content.
func TestPublishFullReplace(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	var gotBody struct {
		Description *string `json:"description"`
		Files       map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}

	pub := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "abc123"}`)) //nolint:errcheck
	})

	text := "1. 🥚 Show A — 1/24\n"
	length, err := pub.Publish(context.Background(), text)
	require.NoError(t, err)
	require.Equal(t, len(text), length)

	require.Equal(t, http.MethodPatch, gotMethod)
	require.Equal(t, "/gists/abc123", gotPath)
	require.NotNil(t, gotBody.Description)
	require.Empty(t, *gotBody.Description)

	file, ok := gotBody.Files["🍖 MAL anime I'm currently watching"]
	require.True(t, ok, "files: %v", gotBody.Files)
	require.Equal(t, text, file.Content)
}

// TestPublishUnauthorized maps rejected credentials to ErrUnauthorized.
func TestPublishUnauthorized(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		pub := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "Bad credentials"}`, status)
		})

		_, err := pub.Publish(context.Background(), "content")
		require.ErrorIs(t, err, ErrUnauthorized, "status %d", status)
	}
}

// TestPublishSnippetNotFound maps an unresolvable gist ID to
// ErrSnippetNotFound.
func TestPublishSnippetNotFound(t *testing.T) {
	t.Parallel()

	pub := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	_, err := pub.Publish(context.Background(), "content")
	require.ErrorIs(t, err, ErrSnippetNotFound)
}

// TestPublishUpstreamUnavailable covers transport-level failures.
func TestPublishUpstreamUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	pub, err := NewPublisher(Config{ID: "abc123", Token: "t", BaseURL: srv.URL, Filename: "f"}, nil)
	require.NoError(t, err)

	_, err = pub.Publish(context.Background(), "content")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

// TestFilename pins the status phrases shown as the gist title.
func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType mal.ContentType
		status      mal.Status
		want        string
	}{
		{mal.ContentTypeAnime, mal.StatusCurrent, "🍖 MAL anime I'm currently watching"},
		{mal.ContentTypeManga, mal.StatusCurrent, "🍖 MAL manga I'm currently reading"},
		{mal.ContentTypeAnime, mal.StatusCompleted, "🍖 MAL anime I have completed"},
		{mal.ContentTypeManga, mal.StatusOnHold, "🍖 MAL manga I have on hold"},
		{mal.ContentTypeAnime, mal.StatusDropped, "🍖 MAL anime I have dropped"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Filename(tt.contentType, tt.status))
	}
}
