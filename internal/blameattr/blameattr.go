// Package blameattr implements the Blame Attributor (spec.md §4.3): given
// the line-annotation output for a file at a revision, resolves which
// commit last authored a given pre-image line.
package blameattr

import (
	"errors"
	"strings"
)

// ErrLineOutOfRange is returned when preStart falls outside the annotated
// file or its entry is blank. The Commit Processor then leaves that edit's
// pre_commit null; skipping a whole modification is driven by
// vcs.ErrPathNotFound from the annotation query instead.
var ErrLineOutOfRange = errors.New("blameattr: line out of range of annotation")

// Attribute takes the 1-based preStart index into annotation (the ordered
// per-line blame summaries returned by the repository collaborator) and
// returns the commit identity that authored that line, with any leading
// boundary caret stripped.
func Attribute(annotation []string, preStart int) (string, error) {
	if preStart < 1 || preStart > len(annotation) {
		return "", ErrLineOutOfRange
	}
	entry := annotation[preStart-1]
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return "", ErrLineOutOfRange
	}
	return strings.TrimPrefix(fields[0], "^"), nil
}
