package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.myanimelist.net/v2"
	defaultTimeout = 30 * time.Second

	// maxEntries caps how many entries a fetch returns. The upstream order is
	// treated as pre-ranked, so the first five win.
	maxEntries = 5
)

// ClientConfig carries the knobs needed to talk to the MAL API.
type ClientConfig struct {
	// BaseURL overrides the production API endpoint, mainly for tests.
	BaseURL string
	// ClientID authenticates public list reads via the X-MAL-CLIENT-ID header.
	ClientID string
	// AccessToken authenticates via OAuth bearer token and also grants access
	// to private lists. When both are set the token wins.
	AccessToken string
	// Timeout bounds each API request.
	Timeout time.Duration
}

// Client fetches list entries from the MAL API. It performs a single
// authenticated read per Fetch call and never retries.
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient constructs a Client from config. A nil logger is replaced with a
// no-op logger.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     baseURL,
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// listResponse mirrors the subset of the MAL API v2 list payload we consume.
type listResponse struct {
	Data []listItem `json:"data"`
}

type listItem struct {
	Node struct {
		Title       string `json:"title"`
		NumEpisodes int    `json:"num_episodes"`
		NumChapters int    `json:"num_chapters"`
		NumVolumes  int    `json:"num_volumes"`
	} `json:"node"`
	ListStatus struct {
		NumEpisodesWatched int `json:"num_episodes_watched"`
		NumChaptersRead    int `json:"num_chapters_read"`
		NumVolumesRead     int `json:"num_volumes_read"`
	} `json:"list_status"`
}

// Fetch reads the user's list filtered by status and returns at most five
// entries in the order the service ranked them. It fails with ErrInvalidUser
// when the username does not resolve and ErrUpstreamUnavailable on transport
// failures or non-success responses.
func (c *Client) Fetch(
	ctx context.Context,
	username string,
	contentType ContentType,
	status Status,
) ([]Entry, error) {
	endpoint := fmt.Sprintf("%s/users/%s/%s", c.baseURL, url.PathEscape(username), contentType.listPath())

	query := url.Values{}
	query.Set("status", status.apiValue(contentType))
	query.Set("limit", fmt.Sprintf("%d", maxEntries))
	if contentType == ContentTypeManga {
		query.Set("fields", "list_status,num_chapters,num_volumes")
	} else {
		query.Set("fields", "list_status,num_episodes")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	} else {
		req.Header.Set("X-MAL-CLIENT-ID", c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUser, username)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 401/403 mean a bad client ID, an expired token, or a private list.
		// The caller cannot distinguish those from here, so they surface as
		// an upstream failure with the status attached.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}

	entries := make([]Entry, 0, maxEntries)
	for _, item := range payload.Data {
		if len(entries) == maxEntries {
			break
		}
		entries = append(entries, toEntry(item, contentType))
	}

	c.logger.Debug("list fetched",
		zap.String("username", username),
		zap.String("content_type", string(contentType)),
		zap.String("status", string(status)),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// toEntry normalizes one API item into an Entry. Manga progress is tracked in
// both chapters and volumes; whichever pair is further along represents the
// item, and when neither total is known the larger raw count is kept.
func toEntry(item listItem, contentType ContentType) Entry {
	if contentType != ContentTypeManga {
		return Entry{
			Title:   item.Node.Title,
			Current: item.ListStatus.NumEpisodesWatched,
			Total:   item.Node.NumEpisodes,
		}
	}

	chapters := item.ListStatus.NumChaptersRead
	volumes := item.ListStatus.NumVolumesRead
	chapterTotal := item.Node.NumChapters
	volumeTotal := item.Node.NumVolumes

	if chapterTotal == 0 && volumeTotal == 0 {
		current := chapters
		if volumes > current {
			current = volumes
		}
		return Entry{Title: item.Node.Title, Current: current}
	}

	chapterRatio := ratio(chapters, chapterTotal)
	volumeRatio := ratio(volumes, volumeTotal)
	if volumeRatio > chapterRatio {
		return Entry{Title: item.Node.Title, Current: volumes, Total: volumeTotal}
	}
	return Entry{Title: item.Node.Title, Current: chapters, Total: chapterTotal}
}

func ratio(current, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(current) / float64(total)
}
