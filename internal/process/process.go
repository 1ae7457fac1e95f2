// Package process implements the Commit Processor (spec.md §4.4): the
// per-commit orchestrator that, given a repository handle the Scheduler
// opened for it, fetches one commit's modifications, runs each through the Diff Aligner, Edit
// Characteriser, and Blame Attributor, and assembles the commit row and
// edit rows the Scheduler appends to the store.
package process

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/linemine/linemine/internal/blameattr"
	"github.com/linemine/linemine/internal/characterize"
	"github.com/linemine/linemine/internal/diffalign"
	"github.com/linemine/linemine/internal/store"
	"github.com/linemine/linemine/internal/telemetry"
	"github.com/linemine/linemine/internal/vcs"
)

// Result is the pair a Commit Processor invocation returns to its caller.
type Result struct {
	Commit store.CommitRow
	Edits  []store.EditRow
}

// Process fetches hash's metadata and modifications from repo, filters
// modifications by excludePrefixes, and runs the extraction pipeline over
// what remains. projectName is stamped onto the commit row (spec.md §3's
// project_name column); it is constant across a single mining run.
func Process(repo *vcs.Repository, hash string, excludePrefixes []string, mode diffalign.Mode, projectName string) (Result, error) {
	meta, err := repo.Commit(hash)
	if err != nil {
		return Result{}, fmt.Errorf("process: fetch commit %s: %w", hash, err)
	}

	mods, err := repo.Modifications(hash)
	if err != nil {
		return Result{}, fmt.Errorf("process: modifications of %s: %w", hash, err)
	}

	commitRow := buildCommitRow(meta, projectName, len(mods))

	var parentHash string
	if len(meta.Parents) > 0 {
		parentHash = meta.Parents[0]
	}

	var edits []store.EditRow
	for _, mod := range mods {
		if excluded(mod.NewPath, excludePrefixes) || excluded(mod.OldPath, excludePrefixes) {
			continue
		}
		modEdits, err := processModification(repo, parentHash, hash, mod, mode)
		if errors.Is(err, vcs.ErrPathNotFound) {
			telemetry.Debugf("Could not find file %s in commit %s, probably a double rename", mod.NewPath, hash)
			continue
		}
		if err != nil {
			telemetry.Debugf("skipping modification %s of commit %s: %v", mod.NewPath, hash, err)
			continue
		}
		edits = append(edits, modEdits...)
	}

	return Result{Commit: commitRow, Edits: edits}, nil
}

// excluded reports whether path begins with prefix up to and including a
// path separator, for any prefix in prefixes. This intentionally matches
// spec.md §9's documented prefix-of-directory semantics: a prefix must be
// followed by "/" in path to exclude it, so a prefix equal to path itself
// does not exclude path.
func excluded(path string, prefixes []string) bool {
	if path == "" {
		return false
	}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func processModification(repo *vcs.Repository, parentHash, commitHash string, mod vcs.Modification, mode diffalign.Mode) ([]store.EditRow, error) {
	deleted, added, err := vcs.ParseDiff(mod.Diff)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	_, edits := diffalign.Align(deleted, added, mode)

	path := mod.OldPath
	if path == "" {
		path = mod.NewPath
	}

	var annotation []string
	if parentHash != "" && path != "" {
		annotation, err = repo.Annotate(parentHash, path)
		if err != nil {
			return nil, fmt.Errorf("annotate %s@%s: %w", path, parentHash, err)
		}
	}

	sort.Slice(edits, func(i, j int) bool {
		if edits[i].PreStart != edits[j].PreStart {
			return edits[i].PreStart < edits[j].PreStart
		}
		return edits[i].PostStart < edits[j].PostStart
	})

	rows := make([]store.EditRow, 0, len(edits))
	for _, e := range edits {
		chars := characterize.Characterize(e, deleted, added)
		row := buildEditRow(mod, commitHash, e, chars)

		if e.NumDeleted > 0 && annotation != nil {
			preCommit, err := blameattr.Attribute(annotation, e.PreStart)
			if err == nil {
				row.PreCommit = nullString(preCommit)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func buildCommitRow(meta vcs.CommitMeta, projectName string, numModifications int) store.CommitRow {
	return store.CommitRow{
		Hash:              meta.Hash,
		AuthorEmail:       meta.AuthorEmail,
		AuthorName:        meta.AuthorName,
		CommitterEmail:    meta.CommitterEmail,
		CommitterName:     meta.CommitterName,
		AuthorDate:        meta.AuthorDate,
		CommitterDate:     meta.CommitterDate,
		CommitterTimezone: meta.CommitterTZ,
		Modifications:     numModifications,
		MsgLen:            len(meta.Message),
		ProjectName:       projectName,
		Parents:           strings.Join(meta.Parents, ","),
		Merge:             len(meta.Parents) > 1,
		InMainBranch:      meta.InMainBranch,
		Branches:          strings.Join(meta.Branches, ","),
	}
}

func buildEditRow(mod vcs.Modification, commitHash string, e diffalign.EditRecord, c characterize.Characteristics) store.EditRow {
	row := store.EditRow{
		ModFilename: mod.Filename,
		ModNewPath:  mod.NewPath,
		ModOldPath:  mod.OldPath,
		PostCommit:  commitHash,
		ModAdded:    mod.Added,
		ModRemoved:  mod.Removed,
	}

	if e.NumDeleted > 0 {
		row.PreStartingLineNum = nullInt(e.PreStart)
	}
	if e.NumAdded > 0 {
		row.PostStartingLineNum = nullInt(e.PostStart)
	}
	row.PreLenInLines = nullIntPtr(c.Pre.LenInLines)
	row.PreLenInChars = nullIntPtr(c.Pre.LenInChars)
	row.PreEntropy = nullFloatPtr(c.Pre.Entropy)
	row.PostLenInLines = nullIntPtr(c.Post.LenInLines)
	row.PostLenInChars = nullIntPtr(c.Post.LenInChars)
	row.PostEntropy = nullFloatPtr(c.Post.Entropy)
	row.LevenshteinDist = nullIntPtr(c.LevenshteinDist)
	return row
}
