package network

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/linemine/linemine/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "net.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	commitA := store.CommitRow{Hash: "aaaaaaaa1111", AuthorEmail: "alice@example.com", AuthorName: "Alice", CommitterDate: "2026-01-01 00:00:00"}
	commitB := store.CommitRow{Hash: "bbbbbbbb2222", AuthorEmail: "bob@example.com", AuthorName: "Bob", CommitterDate: "2026-01-02 00:00:00"}
	if err := st.AppendCommit(commitA, nil); err != nil {
		t.Fatal(err)
	}
	// pre_commit is stored in 8-character short form, so it only joins to
	// commitA's full hash through the prefix match.
	if err := st.AppendCommit(commitB, []store.EditRow{
		{
			ModFilename:     "a.c",
			PostCommit:      "bbbbbbbb2222",
			PreCommit:       sql.NullString{String: "aaaaaaaa", Valid: true},
			LevenshteinDist: sql.NullInt64{Int64: 3, Valid: true},
		},
	}); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestCoEditingEdges_JoinsOnEightCharPrefix(t *testing.T) {
	st := seedStore(t)
	edges, err := CoEditingEdges(st.DB())
	if err != nil {
		t.Fatalf("CoEditingEdges: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 co-editing edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Source != "alice@example.com" || e.Target != "bob@example.com" {
		t.Errorf("expected alice->bob, got %s->%s", e.Source, e.Target)
	}
	if e.LevenshteinDist != 3 {
		t.Errorf("expected levenshtein_dist=3, got %v", e.LevenshteinDist)
	}
}

func TestCoEditingEdges_FiltersSelfEdges(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "self.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	commit := store.CommitRow{Hash: "cccccccc3333", AuthorEmail: "carol@example.com", CommitterDate: "2026-01-01 00:00:00"}
	if err := st.AppendCommit(commit, []store.EditRow{
		{
			ModFilename:     "a.c",
			PostCommit:      "cccccccc3333",
			PreCommit:       sql.NullString{String: "cccccccc3333", Valid: true},
			LevenshteinDist: sql.NullInt64{Int64: 1, Valid: true},
		},
	}); err != nil {
		t.Fatal(err)
	}

	edges, err := CoEditingEdges(st.DB())
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 0 {
		t.Errorf("expected self-edges to be filtered, got %d", len(edges))
	}
}

func TestDAGEdges_KeysByAuthorAndShortHash(t *testing.T) {
	st := seedStore(t)
	edges, err := DAGEdges(st.DB())
	if err != nil {
		t.Fatalf("DAGEdges: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 DAG edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Source != "alice@example.com,aaaaaaaa" {
		t.Errorf("expected source=alice@example.com,aaaaaaaa, got %s", e.Source)
	}
	if e.Target != "bob@example.com,bbbbbbbb" {
		t.Errorf("expected target=bob@example.com,bbbbbbbb, got %s", e.Target)
	}
}

func TestDAGEdges_FiltersSameAuthorAcrossDifferentCommits(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "same-author.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	// Alice authors an earlier commit, then removes one of her own lines
	// in a later commit: same author, distinct commit hashes. Scenario 6
	// (spec.md §4.6/§8) requires this to contribute no DAG edge even
	// though the composite "{author},{hash:8}" keys differ.
	commitA := store.CommitRow{Hash: "aaaaaaaa1111", AuthorEmail: "alice@example.com", AuthorName: "Alice", CommitterDate: "2026-01-01 00:00:00"}
	commitB := store.CommitRow{Hash: "dddddddd4444", AuthorEmail: "alice@example.com", AuthorName: "Alice", CommitterDate: "2026-01-03 00:00:00"}
	if err := st.AppendCommit(commitA, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.AppendCommit(commitB, []store.EditRow{
		{
			ModFilename:     "a.c",
			PostCommit:      "dddddddd4444",
			PreCommit:       sql.NullString{String: "aaaaaaaa1111", Valid: true},
			LevenshteinDist: sql.NullInt64{Int64: 5, Valid: true},
		},
	}); err != nil {
		t.Fatal(err)
	}

	edges, err := DAGEdges(st.DB())
	if err != nil {
		t.Fatalf("DAGEdges: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("expected same-author edit across commits to contribute no DAG edge, got %d: %v", len(edges), edges)
	}

	// Co-editing keys are bare author identity, so this collapses to the
	// same source==target filter there, but confirm it explicitly too.
	coEdges, err := CoEditingEdges(st.DB())
	if err != nil {
		t.Fatalf("CoEditingEdges: %v", err)
	}
	if len(coEdges) != 0 {
		t.Errorf("expected same-author edit to contribute no co-editing edge, got %d", len(coEdges))
	}
}

func TestAuthorFileEdges_DistinctTriples(t *testing.T) {
	st := seedStore(t)
	edges, err := AuthorFileEdges(st.DB())
	if err != nil {
		t.Fatalf("AuthorFileEdges: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 bipartite edge, got %d", len(edges))
	}
	if edges[0].Source != "Bob" || edges[0].Target != "a.c" {
		t.Errorf("expected Bob->a.c, got %s->%s", edges[0].Source, edges[0].Target)
	}
}

func TestTopoSort_OrdersSourceBeforeTarget(t *testing.T) {
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	}
	order, err := TopoSort(edges)
	if err != nil {
		t.Fatal(err)
	}
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["a"] >= pos["b"] || pos["b"] >= pos["c"] {
		t.Errorf("expected a before b before c, got %v", order)
	}
}

func TestTopoSort_DetectsCycle(t *testing.T) {
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}
	if _, err := TopoSort(edges); err == nil {
		t.Error("expected an error for a cyclic edge set")
	}
}
