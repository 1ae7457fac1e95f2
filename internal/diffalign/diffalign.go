// Package diffalign implements the Diff Aligner (spec.md §4.1): a pure
// function from two sparse line-indexed maps to a pre-to-post line mapping
// and a sequence of edit records. It has no I/O and no dependency on any
// VCS — it is handed already-parsed deleted/added maps.
package diffalign

import "sort"

// Mode selects the aligner's segmentation granularity.
type Mode int

const (
	// Line mode: every changed line is its own edit record.
	Line Mode = iota
	// Block mode: maximal runs of consecutive deleted/added lines are
	// coalesced into one edit record.
	Block
)

// EditRecord is one contiguous segment of a modification.
type EditRecord struct {
	PreStart   int
	NumDeleted int
	PostStart  int
	NumAdded   int
}

// IsPureInsertion reports whether this edit only adds lines.
func (e EditRecord) IsPureInsertion() bool { return e.NumDeleted == 0 && e.NumAdded > 0 }

// IsPureDeletion reports whether this edit only removes lines.
func (e EditRecord) IsPureDeletion() bool { return e.NumAdded == 0 && e.NumDeleted > 0 }

// IsReplacement reports whether this edit both removes and adds lines.
func (e EditRecord) IsReplacement() bool { return e.NumDeleted > 0 && e.NumAdded > 0 }

// PostLine is the image of a pre-image line number under PreToPost: either
// a surviving post-image line number, or the Removed sentinel.
type PostLine struct {
	Line    int
	Removed bool
}

// PreToPost is a partial mapping from pre-image line numbers to either a
// post-image line number (the line survived, possibly shifted) or Removed.
type PreToPost map[int]PostLine

// Align maps line numbers between the pre- and post-image of a modification
// and segments the change into edit records, per spec.md §4.1.
//
// The aligner is total on well-formed inputs (positive keys). Malformed
// input is a programmer error — identify_edits in the reference
// implementation never validated its inputs either, and spec.md §4.1 is
// explicit that this is not user-facing failure territory — so Align
// panics rather than returning an error.
func Align(deleted, added map[int]string, mode Mode) (PreToPost, []EditRecord) {
	for k := range deleted {
		if k <= 0 {
			panic("diffalign: non-positive line number in deleted map")
		}
	}
	for k := range added {
		if k <= 0 {
			panic("diffalign: non-positive line number in added map")
		}
	}

	minDeleted, maxDeleted := boundsOf(deleted)
	minAdded, maxAdded := boundsOf(added)

	pre := minInt(minDeleted, minAdded)
	post := pre

	preToPost := PreToPost{}
	var edits []EditRecord

	// These three counters persist across outer-loop iterations by design:
	// each iteration advances pre/post by exactly one line, draining one
	// counter unit in priority order (both, no-post, no-pre). A block
	// whose length exceeds a single line is drained one line per
	// iteration across several iterations, not all at once.
	var bothInc, noPostInc, noPreInc int

	for pre <= maxDeleted || post <= maxAdded {
		if mode == Block {
			delBlock := blockLength(deleted, pre)
			addBlock := blockLength(added, post)

			if delBlock > 0 || addBlock > 0 {
				edits = append(edits, EditRecord{
					PreStart:   pre,
					NumDeleted: delBlock,
					PostStart:  post,
					NumAdded:   addBlock,
				})
			}

			if delBlock > addBlock {
				noPostInc = delBlock - addBlock
				bothInc = addBlock
			} else if addBlock > delBlock {
				noPreInc = addBlock - delBlock
				bothInc = delBlock
			}
			// delBlock == addBlock (including both zero): leave the
			// counters untouched — any leftover budget from a prior
			// iteration keeps draining.
		} else {
			p := containsKey(deleted, pre)
			q := containsKey(added, post)

			if p || q {
				edits = append(edits, EditRecord{
					PreStart:   pre,
					NumDeleted: boolToInt(p),
					PostStart:  post,
					NumAdded:   boolToInt(q),
				})
			}

			if p && !q {
				noPostInc++
			}
			if q && !p {
				noPreInc++
			}
		}

		switch {
		case bothInc > 0:
			bothInc--
			preToPost[pre] = PostLine{Line: post}
			pre++
			post++
		case noPostInc > 0:
			noPostInc--
			preToPost[pre] = PostLine{Removed: true}
			pre++
		case noPreInc > 0:
			noPreInc--
			post++
		default:
			// Unchanged surviving line.
			preToPost[pre] = PostLine{Line: post}
			pre++
			post++
		}
	}

	return preToPost, edits
}

// blockLength returns the number of consecutive keys starting at k that
// belong to lines, provided k is itself a block start (k-1 is absent from
// lines); otherwise 0. It counts by map lookups of k, k+1, ... until a
// line number is absent; it does not iterate a sorted key list.
func blockLength(lines map[int]string, k int) int {
	if !containsKey(lines, k) {
		return 0
	}
	if containsKey(lines, k-1) {
		return 0
	}
	length := 0
	for containsKey(lines, k+length) {
		length++
	}
	return length
}

func containsKey(m map[int]string, k int) bool {
	_, ok := m[k]
	return ok
}

func boundsOf(m map[int]string) (min, max int) {
	if len(m) == 0 {
		return int(^uint(0) >> 1), -1 // +inf, -1
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys[0], keys[len(keys)-1]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
