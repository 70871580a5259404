// Package render classifies list progress into tiers and assembles the text
// block published to the gist.
package render

import (
	"errors"
	"math"
)

// Tier is the coarse completion bucket an entry falls into.
type Tier string

// The six tiers. TierUnknown covers every entry whose total is not known,
// regardless of how far along it is.
const (
	TierUnknown Tier = "unknown"
	Tier0to19   Tier = "0-19%"
	Tier20to39  Tier = "20-39%"
	Tier40to59  Tier = "40-59%"
	Tier60to79  Tier = "60-79%"
	Tier80to100 Tier = "80-100%"
)

// ErrMalformedEntry indicates a negative progress count. The upstream service
// should never produce one, but the contract must not silently misrender it.
var ErrMalformedEntry = errors.New("render: negative progress count")

// unknownGlyph marks entries whose total length is not known.
const unknownGlyph = "🍳"

// bands maps completion ratio to tier and glyph. Entries are tested in order
// and the first band whose exclusive upper bound exceeds the ratio wins; the
// final band is open-ended so a ratio of exactly 1.0 lands in it.
var bands = []struct {
	upper float64
	tier  Tier
	glyph string
}{
	{0.20, Tier0to19, "🥚"},
	{0.40, Tier20to39, "🐣"},
	{0.60, Tier40to59, "🐥"},
	{0.80, Tier60to79, "🐔"},
	{math.Inf(1), Tier80to100, "🍗"},
}

// Classify derives the tier for one (current, total) pair. A total of zero
// means the length is unknown and always yields TierUnknown; overshoot
// (current > total, e.g. rewatch counters) clamps to the final tier.
func Classify(current, total int) (Tier, error) {
	if current < 0 {
		return "", ErrMalformedEntry
	}
	if total <= 0 {
		return TierUnknown, nil
	}
	ratio := float64(current) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	for _, b := range bands {
		if ratio < b.upper {
			return b.tier, nil
		}
	}
	return Tier80to100, nil
}

// Glyph returns the display glyph for a tier.
func Glyph(tier Tier) string {
	for _, b := range bands {
		if b.tier == tier {
			return b.glyph
		}
	}
	return unknownGlyph
}
