// Package store is the relational sink (spec.md §4.5, §6): it owns the
// on-disk SQLite schema — commits, edits, and a _metadata row — and the
// resume-validation contract that lets a second run on the same outfile
// continue where a terminated first run left off.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Method identifies which Diff Aligner mode produced a store's contents.
// Persisted stores are tied to one method; resuming with the other is a
// resume mismatch (spec.md §4.5, §7).
type Method string

const (
	MethodLines  Method = "lines"
	MethodBlocks Method = "blocks"
)

// ErrResumeMismatch is returned by ValidateResume when an existing store's metadata
// disagrees with the current run's (method, repository), or when the
// store holds commits absent from the repository being mined.
var ErrResumeMismatch = errors.New("store: resume mismatch")

// CommitRow mirrors the persisted commits table (spec.md §3).
type CommitRow struct {
	Hash              string `db:"hash"`
	AuthorEmail       string `db:"author_email"`
	AuthorName        string `db:"author_name"`
	CommitterEmail    string `db:"committer_email"`
	CommitterName     string `db:"committer_name"`
	AuthorDate        string `db:"author_date"`
	CommitterDate     string `db:"committer_date"`
	CommitterTimezone string `db:"committer_timezone"`
	Modifications     int    `db:"modifications"`
	MsgLen            int    `db:"msg_len"`
	ProjectName       string `db:"project_name"`
	Parents           string `db:"parents"`
	Merge             bool   `db:"merge"`
	InMainBranch      bool   `db:"in_main_branch"`
	Branches          string `db:"branches"`
}

// EditRow mirrors the persisted edits table (spec.md §3). Nullable
// columns use sql.Null* so the zero value round-trips as SQL NULL.
type EditRow struct {
	ModFilename            string         `db:"mod_filename"`
	ModNewPath             string         `db:"mod_new_path"`
	ModOldPath             string         `db:"mod_old_path"`
	PostCommit             string         `db:"post_commit"`
	ModAdded               int            `db:"mod_added"`
	ModRemoved             int            `db:"mod_removed"`
	ModCyclomaticComplexity sql.NullInt64 `db:"mod_cyclomatic_complexity"`
	ModLOC                 sql.NullInt64 `db:"mod_loc"`
	ModTokenCount           sql.NullInt64 `db:"mod_token_count"`
	PreStartingLineNum      sql.NullInt64 `db:"pre_starting_line_num"`
	PreLenInLines           sql.NullInt64 `db:"pre_len_in_lines"`
	PreLenInChars           sql.NullInt64 `db:"pre_len_in_chars"`
	PreEntropy              sql.NullFloat64 `db:"pre_entropy"`
	PreCommit               sql.NullString  `db:"pre_commit"`
	PostStartingLineNum     sql.NullInt64 `db:"post_starting_line_num"`
	PostLenInLines          sql.NullInt64 `db:"post_len_in_lines"`
	PostLenInChars          sql.NullInt64 `db:"post_len_in_chars"`
	PostEntropy             sql.NullFloat64 `db:"post_entropy"`
	LevenshteinDist         sql.NullInt64 `db:"levenshtein_dist"`
}

// metadataRow mirrors the _metadata table's single row.
type metadataRow struct {
	CreatedWith string `db:"created_with"`
	Repository  string `db:"repository"`
	Date        string `db:"date"`
	Method      string `db:"method"`
}

const schema = `
CREATE TABLE IF NOT EXISTS commits (
	hash TEXT PRIMARY KEY,
	author_email TEXT,
	author_name TEXT,
	committer_email TEXT,
	committer_name TEXT,
	author_date TEXT,
	committer_date TEXT,
	committer_timezone TEXT,
	modifications INTEGER,
	msg_len INTEGER,
	project_name TEXT,
	parents TEXT,
	merge INTEGER,
	in_main_branch INTEGER,
	branches TEXT
);

CREATE TABLE IF NOT EXISTS edits (
	mod_filename TEXT,
	mod_new_path TEXT,
	mod_old_path TEXT,
	post_commit TEXT,
	mod_added INTEGER,
	mod_removed INTEGER,
	mod_cyclomatic_complexity INTEGER,
	mod_loc INTEGER,
	mod_token_count INTEGER,
	pre_starting_line_num INTEGER,
	pre_len_in_lines INTEGER,
	pre_len_in_chars INTEGER,
	pre_entropy REAL,
	pre_commit TEXT,
	post_starting_line_num INTEGER,
	post_len_in_lines INTEGER,
	post_len_in_chars INTEGER,
	post_entropy REAL,
	levenshtein_dist INTEGER
);

CREATE INDEX IF NOT EXISTS idx_edits_post_commit ON edits(post_commit);
CREATE INDEX IF NOT EXISTS idx_edits_pre_commit ON edits(pre_commit);

CREATE TABLE IF NOT EXISTS _metadata (
	created_with TEXT,
	repository TEXT,
	date TEXT,
	method TEXT
);
`

// Store is a single-writer handle onto the relational sink (spec.md §4.5:
// "the relational store is single-writer"). It is safe to share across
// goroutines only insofar as all writes are serialised by the caller —
// the Scheduler enforces this by running exactly one sink goroutine.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite store at path and ensures its schema
// exists. It does not perform resume validation; callers needing that
// contract should call ValidateResume afterwards.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsFresh reports whether the store has no _metadata row yet — the
// "store absent/new" case of spec.md §7, as opposed to a store being
// resumed.
func (s *Store) IsFresh() (bool, error) {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM _metadata`); err != nil {
		return false, fmt.Errorf("store: count metadata: %w", err)
	}
	return count == 0, nil
}

// Initialize writes the _metadata row for a fresh store. Called exactly
// once, at the start of a run against a store with no prior metadata.
func (s *Store) Initialize(createdWith, repository, date string, method Method) error {
	_, err := s.db.Exec(
		`INSERT INTO _metadata (created_with, repository, date, method) VALUES (?, ?, ?, ?)`,
		createdWith, repository, date, string(method),
	)
	if err != nil {
		return fmt.Errorf("store: initialize metadata: %w", err)
	}
	return nil
}

// ValidateResume implements spec.md §4.5's resume contract: the existing
// metadata row's (method, repository) must match the current run's, and
// every persisted commit hash must be a member of repoCommits. It returns
// the set of already-persisted commit hashes on success.
func (s *Store) ValidateResume(repository string, method Method, repoCommits map[string]bool) (map[string]bool, error) {
	var meta metadataRow
	if err := s.db.Get(&meta, `SELECT created_with, repository, date, method FROM _metadata LIMIT 1`); err != nil {
		return nil, fmt.Errorf("store: read metadata: %w", err)
	}
	if meta.Repository != repository || meta.Method != string(method) {
		return nil, fmt.Errorf("%w: store was built for repository=%q method=%q, run requested repository=%q method=%q",
			ErrResumeMismatch, meta.Repository, meta.Method, repository, method)
	}

	persisted, err := s.PersistedCommits()
	if err != nil {
		return nil, err
	}
	for hash := range persisted {
		if !repoCommits[hash] {
			return nil, fmt.Errorf("%w: persisted commit %s is absent from the repository", ErrResumeMismatch, hash)
		}
	}
	return persisted, nil
}

// PersistedCommits returns the set of commit hashes already present in
// the commits table.
func (s *Store) PersistedCommits() (map[string]bool, error) {
	var hashes []string
	if err := s.db.Select(&hashes, `SELECT hash FROM commits`); err != nil {
		return nil, fmt.Errorf("store: list persisted commits: %w", err)
	}
	out := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		out[h] = true
	}
	return out, nil
}

// AppendCommit writes one commit row and its edit rows as a single
// transaction (spec.md §3 "A commit row is written atomically with its
// edit rows"). An empty edits slice still writes the commit row; per
// spec.md §4.5, only entirely empty *result sets* skip their append, and
// a commit always has a result set.
func (s *Store) AppendCommit(commit CommitRow, edits []EditRow) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("store: begin append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`
		INSERT INTO commits
		(hash, author_email, author_name, committer_email, committer_name,
		 author_date, committer_date, committer_timezone, modifications,
		 msg_len, project_name, parents, merge, in_main_branch, branches)
		VALUES
		(:hash, :author_email, :author_name, :committer_email, :committer_name,
		 :author_date, :committer_date, :committer_timezone, :modifications,
		 :msg_len, :project_name, :parents, :merge, :in_main_branch, :branches)
	`, commit)
	if err != nil {
		return fmt.Errorf("store: insert commit %s: %w", commit.Hash, err)
	}

	if len(edits) > 0 {
		stmt, err := tx.PrepareNamed(`
			INSERT INTO edits
			(mod_filename, mod_new_path, mod_old_path, post_commit, mod_added, mod_removed,
			 mod_cyclomatic_complexity, mod_loc, mod_token_count,
			 pre_starting_line_num, pre_len_in_lines, pre_len_in_chars, pre_entropy, pre_commit,
			 post_starting_line_num, post_len_in_lines, post_len_in_chars, post_entropy, levenshtein_dist)
			VALUES
			(:mod_filename, :mod_new_path, :mod_old_path, :post_commit, :mod_added, :mod_removed,
			 :mod_cyclomatic_complexity, :mod_loc, :mod_token_count,
			 :pre_starting_line_num, :pre_len_in_lines, :pre_len_in_chars, :pre_entropy, :pre_commit,
			 :post_starting_line_num, :post_len_in_lines, :post_len_in_chars, :post_entropy, :levenshtein_dist)
		`)
		if err != nil {
			return fmt.Errorf("store: prepare edit insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range edits {
			if _, err := stmt.Exec(e); err != nil {
				return fmt.Errorf("store: insert edit for commit %s: %w", commit.Hash, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit append for %s: %w", commit.Hash, err)
	}
	return nil
}

// DB exposes the underlying *sqlx.DB for the network projections, which
// read directly from the store (spec.md §4.6).
func (s *Store) DB() *sqlx.DB {
	return s.db
}
