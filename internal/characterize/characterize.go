// Package characterize implements the Edit Characteriser (spec.md §4.2):
// textual descriptors — line count, character count, Shannon entropy, and
// Levenshtein distance — computed over the pre- and post-image blobs of an
// edit record.
package characterize

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/linemine/linemine/internal/diffalign"
)

// Stats holds the nullable descriptors for one side (pre or post) of an
// edit, expressed as pointers so "null iff" from spec.md §8 maps directly
// onto nil-ness.
type Stats struct {
	LenInLines *int
	LenInChars *int
	Entropy    *float64
}

// Characteristics holds both sides' Stats plus the cross-side distance.
type Characteristics struct {
	Pre             Stats
	Post            Stats
	LevenshteinDist *int
}

// Characterize builds the blobs for an edit record from its deleted/added
// line maps and computes all descriptors per spec.md §4.2.
func Characterize(edit diffalign.EditRecord, deleted, added map[int]string) Characteristics {
	delBlob := blob(deleted, edit.PreStart, edit.NumDeleted)
	addBlob := blob(added, edit.PostStart, edit.NumAdded)
	return CharacterizeBlobs(edit.NumDeleted, edit.NumAdded, delBlob, addBlob)
}

// CharacterizeBlobs computes descriptors directly from already-assembled
// blobs, useful when callers already have the concatenated text.
func CharacterizeBlobs(numDeleted, numAdded int, delBlob, addBlob string) Characteristics {
	var c Characteristics
	c.Pre = sideStats(numDeleted, delBlob)
	c.Post = sideStats(numAdded, addBlob)

	if numDeleted > 0 && numAdded > 0 && len(delBlob) > 0 && len(addBlob) > 0 {
		d := levenshtein.Distance(delBlob, addBlob, nil)
		c.LevenshteinDist = &d
	}
	return c
}

func sideStats(numLines int, text string) Stats {
	if numLines == 0 {
		return Stats{}
	}
	n := numLines
	charLen := len(text)
	s := Stats{LenInLines: &n, LenInChars: &charLen}
	if charLen > 0 {
		h := Entropy(text)
		s.Entropy = &h
	}
	return s
}

// blob concatenates lines[start..start+count) with single-space separators,
// per spec.md §4.2.
func blob(lines map[int]string, start, count int) string {
	if count == 0 {
		return ""
	}
	parts := make([]string, 0, count)
	for i := start; i < start+count; i++ {
		parts = append(parts, lines[i])
	}
	return strings.Join(parts, " ")
}

// Entropy computes the base-2 Shannon entropy of s's byte histogram:
// H(s) = -Σ p_b·log2(p_b) over b in [0,255], with 0·log2(0) := 0.
// Entropy is deliberately a byte-level statistic, not a code-point-level
// one, per spec.md §4.2.
func Entropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}
	total := float64(len(s))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}
