package format

import "path/filepath"

// BaseName returns the last path element of p, used to derive a commit
// row's project_name (spec.md §3) from the repository path the CLI was
// pointed at.
func BaseName(p string) string {
	return filepath.Base(p)
}
