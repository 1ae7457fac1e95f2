package vcs

import (
	"fmt"
	"strings"
)

// Annotate runs the VCS's line-annotation ("blame") query against a
// revision/path pair and returns one entry per line of the file at that
// revision, each prefixed by the commit SHA that last touched it (with a
// leading "^" when git considers it a boundary commit) — the same shape
// `git blame --porcelain` reports per line, generalised here from the
// teacher's single-line BlameForLine into a whole-file query so the Blame
// Attributor (internal/blameattr) can index into it by pre_start.
func (r *Repository) Annotate(revision, path string) ([]string, error) {
	out, err := runGit(r.root, "blame", "--porcelain", revision, "--", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, err.Error())
	}
	return parsePorcelainBlame(out), nil
}

// ErrPathNotFound is returned when the VCS cannot resolve a path at a
// revision — spec.md §4.3's "double rename" failure mode.
var ErrPathNotFound = fmt.Errorf("path not found at revision")

// parsePorcelainBlame extracts, for every final-image line number, a
// summary string "['^']<sha>" matching what blameattr expects to split on
// whitespace and strip a boundary marker from. Porcelain output prints the
// "boundary" header after the first line attributed to a commit, so that
// entry is marked retroactively and later lines of the same commit are
// marked as they are read.
func parsePorcelainBlame(out string) []string {
	var entries []string
	boundaries := map[string]bool{}
	current := ""

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "\t") {
			continue
		}
		if line == "boundary" {
			if current != "" && !boundaries[current] {
				boundaries[current] = true
				entries[len(entries)-1] = "^" + entries[len(entries)-1]
			}
			continue
		}
		if strings.HasPrefix(line, "author") ||
			strings.HasPrefix(line, "committer") ||
			strings.HasPrefix(line, "summary") ||
			strings.HasPrefix(line, "previous") ||
			strings.HasPrefix(line, "filename") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 3 && len(fields[0]) == 40 {
			current = fields[0]
			sha := current
			if boundaries[sha] {
				sha = "^" + sha
			}
			entries = append(entries, sha)
		}
	}
	return entries
}
