package render

import (
	"fmt"
	"strings"

	"github.com/malbox/malbox/internal/mal"
)

// Unit labels raw counts for entries whose total is unknown. It is threaded
// in from the run configuration, never guessed from the entry.
type Unit string

// Supported count units.
const (
	UnitEpisodes Unit = "episodes"
	UnitChapters Unit = "chapters"
)

// UnitFor returns the count unit matching a content type.
func UnitFor(contentType mal.ContentType) Unit {
	if contentType == mal.ContentTypeManga {
		return UnitChapters
	}
	return UnitEpisodes
}

const (
	// maxLines caps the rendered block regardless of input length.
	maxLines = 5
	// titleMaxRunes keeps each line readable in the gist's narrow display.
	titleMaxRunes = 40
	// placeholder is published instead of an empty block, so the snippet
	// never collapses to blank content that looks like an error.
	placeholder = "Nothing in progress right now."
)

// Render assembles the ranked progress block for up to five entries. Output
// is deterministic: identical input yields byte-identical output, which keeps
// the gist's revision diff meaningful run to run.
func Render(entries []mal.Entry, unit Unit) (string, error) {
	if len(entries) == 0 {
		return placeholder + "\n", nil
	}
	if len(entries) > maxLines {
		entries = entries[:maxLines]
	}

	titles := make([]string, len(entries))
	progress := make([]string, len(entries))
	glyphs := make([]string, len(entries))
	widest := 0
	for i, entry := range entries {
		tier, err := Classify(entry.Current, entry.Total)
		if err != nil {
			return "", fmt.Errorf("entry %q: %w", entry.Title, err)
		}
		glyphs[i] = Glyph(tier)
		titles[i] = truncateTitle(entry.Title)
		progress[i] = progressText(entry, unit)
		if n := len([]rune(titles[i])); n > widest {
			widest = n
		}
	}

	var b strings.Builder
	for i := range entries {
		fmt.Fprintf(&b, "%d. %s %s%s — %s\n",
			i+1,
			glyphs[i],
			titles[i],
			strings.Repeat(" ", widest-len([]rune(titles[i]))),
			progress[i],
		)
	}
	return b.String(), nil
}

// progressText formats the completion column: "current/total" when the total
// is known, otherwise the raw count with its unit label.
func progressText(entry mal.Entry, unit Unit) string {
	if entry.Total > 0 {
		return fmt.Sprintf("%d/%d", entry.Current, entry.Total)
	}
	return fmt.Sprintf("%d %s", entry.Current, unit)
}

// truncateTitle trims overlong titles so a line never blows out the block
// width. Counted in runes; many MAL titles are not ASCII.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleMaxRunes {
		return title
	}
	return string(runes[:titleMaxRunes-1]) + "…"
}
