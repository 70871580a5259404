package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbox/malbox/internal/mal"
)

// TestRenderExample pins the documented two-entry anime example byte for byte.
func TestRenderExample(t *testing.T) {
	t.Parallel()

	entries := []mal.Entry{
		{Title: "Show A", Current: 12, Total: 24},
		{Title: "Show B", Current: 3},
	}

	got, err := Render(entries, UnitEpisodes)
	require.NoError(t, err)
	require.Equal(t, "1. 🐥 Show A — 12/24\n2. 🍳 Show B — 3 episodes\n", got)
}

// TestRenderIdempotent ensures identical input yields byte-identical output.
func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	entries := []mal.Entry{
		{Title: "Vinland Saga", Current: 20, Total: 24},
		{Title: "Berserk", Current: 377},
		{Title: "Frieren", Current: 4, Total: 28},
	}

	first, err := Render(entries, UnitChapters)
	require.NoError(t, err)
	second, err := Render(entries, UnitChapters)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestRenderCapsAtFiveLines checks oversize input is truncated, with ranks
// staying contiguous from 1.
func TestRenderCapsAtFiveLines(t *testing.T) {
	t.Parallel()

	entries := make([]mal.Entry, 8)
	for i := range entries {
		entries[i] = mal.Entry{Title: "Show", Current: i, Total: 10}
	}

	got, err := Render(entries, UnitEpisodes)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 5)
	for i, line := range lines {
		require.True(t, strings.HasPrefix(line, fmt.Sprintf("%d. ", i+1)), "line %d: %q", i+1, line)
	}
}

// TestRenderEmptyPlaceholder verifies an empty list never renders blank.
func TestRenderEmptyPlaceholder(t *testing.T) {
	t.Parallel()

	got, err := Render(nil, UnitEpisodes)
	require.NoError(t, err)
	require.Equal(t, "Nothing in progress right now.\n", got)
}

// TestRenderUnitLabel checks the unit comes from configuration, not the entry.
func TestRenderUnitLabel(t *testing.T) {
	t.Parallel()

	entries := []mal.Entry{{Title: "Vagabond", Current: 327}}

	got, err := Render(entries, UnitChapters)
	require.NoError(t, err)
	require.Contains(t, got, "327 chapters")
}

// TestRenderTitleTruncation ensures overlong titles get trimmed with an
// ellipsis instead of blowing out the block width.
func TestRenderTitleTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 80)
	got, err := Render([]mal.Entry{{Title: long, Current: 1, Total: 12}}, UnitEpisodes)
	require.NoError(t, err)
	require.Contains(t, got, "…")
	require.NotContains(t, got, strings.Repeat("x", 41))
}

// TestRenderAlignsProgressColumn checks shorter titles are padded so the
// separator column lines up.
func TestRenderAlignsProgressColumn(t *testing.T) {
	t.Parallel()

	entries := []mal.Entry{
		{Title: "Monster", Current: 30, Total: 74},
		{Title: "One Piece", Current: 1000},
	}

	got, err := Render(entries, UnitEpisodes)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Index(lines[0], "—"), strings.Index(lines[1], "—"))
}

// TestRenderMalformedEntryAborts ensures a negative count fails the whole
// block rather than misrendering one line.
func TestRenderMalformedEntryAborts(t *testing.T) {
	t.Parallel()

	entries := []mal.Entry{
		{Title: "Fine", Current: 1, Total: 2},
		{Title: "Broken", Current: -3, Total: 10},
	}

	_, err := Render(entries, UnitEpisodes)
	require.ErrorIs(t, err, ErrMalformedEntry)
}

// TestUnitFor maps content types to their count unit.
func TestUnitFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, UnitEpisodes, UnitFor(mal.ContentTypeAnime))
	require.Equal(t, UnitChapters, UnitFor(mal.ContentTypeManga))
}
