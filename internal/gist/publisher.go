// Package gist overwrites a GitHub gist with the rendered progress block.
package gist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	"github.com/malbox/malbox/internal/mal"
)

// Sentinel errors surfaced by Publish. Callers match them with errors.Is.
var (
	// ErrUnauthorized indicates the write credential was rejected.
	ErrUnauthorized = errors.New("gist: unauthorized")
	// ErrSnippetNotFound indicates the gist ID does not resolve.
	ErrSnippetNotFound = errors.New("gist: not found")
	// ErrUpstreamUnavailable indicates a transport failure or an unexpected
	// non-success response from the API.
	ErrUpstreamUnavailable = errors.New("gist: upstream unavailable")
)

// Config carries everything needed to address one gist file.
type Config struct {
	// ID identifies the gist to overwrite.
	ID string
	// Token is the pre-issued write credential.
	Token string
	// BaseURL overrides the production API endpoint, mainly for tests.
	BaseURL string
	// Filename names the single file inside the gist; see Filename.
	Filename string
}

// Publisher performs a full-replace write of one gist file. The write is
// atomic from this system's perspective: the API either accepts the whole
// edit or rejects it.
type Publisher struct {
	client   *github.Client
	gistID   string
	filename string
	logger   *zap.Logger
}

// NewPublisher builds a Publisher from config. A nil logger is replaced with
// a no-op logger.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := github.NewClient(nil).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse gist base url: %w", err)
		}
		// go-github requires the base path to end with a slash.
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		client.BaseURL = base
	}
	return &Publisher{
		client:   client,
		gistID:   cfg.ID,
		filename: cfg.Filename,
		logger:   logger,
	}, nil
}

// Publish replaces the gist file's entire content with text and returns the
// number of bytes written. Partial writes cannot happen; on any failure the
// previous revision stays in place.
func (p *Publisher) Publish(ctx context.Context, text string) (int, error) {
	edit := &github.Gist{
		Description: github.String(""),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(p.filename): {Content: github.String(text)},
		},
	}
	_, resp, err := p.client.Gists.Edit(ctx, p.gistID, edit)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return 0, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
			case http.StatusNotFound:
				return 0, fmt.Errorf("%w: %q", ErrSnippetNotFound, p.gistID)
			}
		}
		return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	p.logger.Debug("gist updated",
		zap.String("gist_id", p.gistID),
		zap.String("filename", p.filename),
		zap.Int("bytes", len(text)),
	)
	return len(text), nil
}

// Filename derives the gist file name shown as the snippet's title, e.g.
// "🍖 MAL anime I'm currently watching".
func Filename(contentType mal.ContentType, status mal.Status) string {
	var phrase string
	switch status {
	case mal.StatusCurrent:
		if contentType == mal.ContentTypeManga {
			phrase = "I'm currently reading"
		} else {
			phrase = "I'm currently watching"
		}
	default:
		phrase = "I have " + strings.ReplaceAll(string(status), "-", " ")
	}
	return fmt.Sprintf("🍖 MAL %s %s", contentType, phrase)
}
