package vcs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDiff turns a unified diff (as produced by `git diff`) into the two
// sparse line maps spec.md §3 calls deleted (pre-image line numbers) and
// added (post-image line numbers). Context lines are walked but not
// recorded — only +/- lines populate the maps, matching spec.md §4.1's
// Diff Aligner inputs exactly.
func ParseDiff(diff string) (deleted, added map[int]string, err error) {
	deleted = map[int]string{}
	added = map[int]string{}

	if strings.TrimSpace(diff) == "" {
		return deleted, added, nil
	}

	var preLine, postLine int
	inHunk := false

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@ "):
			ps, pl, ns, _, herr := parseHunkHeader(line)
			if herr != nil {
				return nil, nil, herr
			}
			preLine, postLine = ps, ns
			_ = pl
			inHunk = true

		case !inHunk:
			// File header lines (diff --git, index, ---, +++) before the
			// first hunk.
			continue

		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			deleted[preLine] = line[1:]
			preLine++

		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added[postLine] = line[1:]
			postLine++

		case strings.HasPrefix(line, "\\"):
			// "\ No newline at end of file" — not a content line.

		case strings.HasPrefix(line, " "):
			preLine++
			postLine++

		case line == "":
			// Trailing blank from the final split; ignore.

		default:
			// Unrecognized diff metadata line (e.g. "\ No newline..." already
			// handled above); ignore defensively rather than fail loudly —
			// only the aligner's own inputs are programmer-error territory.
		}
	}

	return deleted, added, nil
}

// parseHunkHeader parses "@@ -preStart,preLen +postStart,postLen @@ ..."
// Either length may be omitted, defaulting to 1.
func parseHunkHeader(line string) (preStart, preLen, postStart, postLen int, err error) {
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end < 0 {
		return 0, 0, 0, 0, fmt.Errorf("malformed hunk header: %q", line)
	}
	ranges := strings.Fields(rest[:end])
	if len(ranges) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("malformed hunk header: %q", line)
	}

	preStart, preLen, err = parseRange(ranges[0], '-')
	if err != nil {
		return 0, 0, 0, 0, err
	}
	postStart, postLen, err = parseRange(ranges[1], '+')
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return preStart, preLen, postStart, postLen, nil
}

func parseRange(field string, sigil byte) (start, length int, err error) {
	if len(field) == 0 || field[0] != sigil {
		return 0, 0, fmt.Errorf("malformed range %q", field)
	}
	field = field[1:]
	parts := strings.SplitN(field, ",", 2)
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed range %q: %w", field, err)
	}
	length = 1
	if len(parts) == 2 {
		length, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("malformed range %q: %w", field, err)
		}
	}
	return start, length, nil
}
