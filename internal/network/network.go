// Package network implements the Derived-network projections (spec.md
// §4.6): SQL-shaped views over the store's commits and edits tables that
// produce the three collaboration-structure edge streams the system
// exists to surface. The co-editing and DAG projections share the same
// pre/post-author join shape, factored here into one parametric query;
// the author-file projection has its own query.
package network

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Edge is a directed, time-stamped, Levenshtein-weighted edge of the
// co-editing and DAG projections. A null levenshtein_dist is read as zero.
// Author-file bipartite edges use BipartiteEdge instead.
type Edge struct {
	Source          string  `db:"source"`
	Target          string  `db:"target"`
	Time            string  `db:"time"`
	LevenshteinDist float64 `db:"levenshtein_dist"`
}

// joinedRow is the shape every author/commit join query produces before
// a projection decides how to key its source/target.
type joinedRow struct {
	PreAuthor       string  `db:"pre_author"`
	PostAuthor      string  `db:"post_author"`
	PreCommit       string  `db:"pre_commit"`
	PostCommit      string  `db:"post_commit"`
	CommitterDate   string  `db:"committer_date"`
	LevenshteinDist float64 `db:"levenshtein_dist"`
}

const coEditJoinQuery = `
SELECT
	pre_c.author_email  AS pre_author,
	post_c.author_email AS post_author,
	e.pre_commit        AS pre_commit,
	e.post_commit       AS post_commit,
	post_c.committer_date AS committer_date,
	COALESCE(e.levenshtein_dist, 0) AS levenshtein_dist
FROM edits e
JOIN commits post_c ON substr(post_c.hash, 1, 8) = substr(e.post_commit, 1, 8)
JOIN commits pre_c  ON substr(pre_c.hash, 1, 8)  = substr(e.pre_commit, 1, 8)
WHERE e.pre_commit IS NOT NULL
`

// keyFunc derives a projection's source/target node key from a joined
// row's pre/post author identity and commit hash.
type keyFunc func(author, commitHash string) string

func plainAuthorKey(author, _ string) string { return author }

func authorCommitKey(author, commitHash string) string {
	short := commitHash
	if len(short) > 8 {
		short = short[:8]
	}
	return author + "," + short
}

// projectEdges runs the shared pre/post-author join and builds edges from
// it with the given node-key function, dropping rows whose pre/post
// author identity is the same (spec.md §4.6: "filter pre_author ≠
// post_author" — a same-author edit contributes no edge regardless of
// how its endpoints happen to be keyed, e.g. a DAG edge's keys also
// carry the commit hash, so source == target would miss the case where
// alice revises her own earlier commit).
func projectEdges(db *sqlx.DB, key keyFunc) ([]Edge, error) {
	var rows []joinedRow
	if err := db.Select(&rows, coEditJoinQuery); err != nil {
		return nil, fmt.Errorf("network: co-editing join: %w", err)
	}

	edges := make([]Edge, 0, len(rows))
	for _, r := range rows {
		if r.PreAuthor == r.PostAuthor {
			continue
		}
		edges = append(edges, Edge{
			Source:          key(r.PreAuthor, r.PreCommit),
			Target:          key(r.PostAuthor, r.PostCommit),
			Time:            r.CommitterDate,
			LevenshteinDist: r.LevenshteinDist,
		})
	}
	return edges, nil
}

// CoEditingEdges builds the temporal co-editing network: a directed edge
// from the author of a deleted line to the author of the commit that
// removed or replaced it, weighted by Levenshtein distance.
func CoEditingEdges(db *sqlx.DB) ([]Edge, error) {
	return projectEdges(db, plainAuthorKey)
}

// DAGEdges builds the author DAG: like co-editing, but nodes are keyed
// by "{author},{short-commit-hash}" so an author's successive
// incarnations across commits are distinguished.
func DAGEdges(db *sqlx.DB) ([]Edge, error) {
	return projectEdges(db, authorCommitKey)
}

// BipartiteEdge is an author-file edge; it has no Levenshtein weight.
type BipartiteEdge struct {
	Source string `db:"source"`
	Target string `db:"target"`
	Time   string `db:"time"`
}

const bipartiteQuery = `
SELECT DISTINCT
	c.author_name  AS source,
	e.mod_filename AS target,
	c.committer_date AS time
FROM edits e
JOIN commits c ON c.hash = e.post_commit
`

// AuthorFileEdges builds the author-file bipartite network: a distinct
// (author, filename, committer_date) triple per commit that modified a
// file, joined on post_commit == commits.hash (an exact join — unlike
// the co-editing join, spec.md §4.6 does not call for prefix matching
// here, since post_commit is always the full persisted hash of the
// modifying commit itself).
func AuthorFileEdges(db *sqlx.DB) ([]BipartiteEdge, error) {
	var edges []BipartiteEdge
	if err := db.Select(&edges, bipartiteQuery); err != nil {
		return nil, fmt.Errorf("network: author-file join: %w", err)
	}
	return edges, nil
}
