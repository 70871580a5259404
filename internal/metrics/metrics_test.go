package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestInitIsIdempotent ensures repeated Init calls do not re-register
// collectors (promauto panics on duplicates).
func TestInitIsIdempotent(t *testing.T) {
	Init()
	require.NotPanics(t, Init)
}

// TestObserveHelpers exercises the collectors end to end via the handler.
func TestObserveHelpers(t *testing.T) {
	Init()

	ObserveRun("published")
	ObserveRun("skipped")
	ObservePublish(128)
	ObserveFetch(250*time.Millisecond, 5)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL) //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	require.Contains(t, text, "malbox_runs_total")
	require.Contains(t, text, "malbox_publish_bytes 128")
	require.Contains(t, text, "malbox_fetch_entries 5")
	require.Contains(t, text, "malbox_fetch_duration_seconds")
}

// TestObserveBeforeInitIsSafe checks the nil guards hold when collectors are
// not yet registered.
func TestObserveBeforeInitIsSafe(t *testing.T) {
	// Init may already have run in this process; the guard still must not
	// panic either way.
	require.NotPanics(t, func() {
		ObserveRun("published")
		ObservePublish(1)
		ObserveFetch(time.Second, 1)
	})
}
