package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Alice", "GIT_AUTHOR_EMAIL=alice@example.com",
			"GIT_COMMITTER_NAME=Alice", "GIT_COMMITTER_EMAIL=alice@example.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
		return string(out)
	}

	run("init", "-b", "main")
	run("config", "user.email", "alice@example.com")
	run("config", "user.name", "Alice")

	writeFile(t, dir, "a.c", "line1\nline2\nline3\n")
	run("add", "a.c")
	run("commit", "-m", "initial")

	writeFile(t, dir, "a.c", "line1\nCHANGED\nline3\n")
	run("add", "a.c")
	run("commit", "-m", "change line2")

	return dir
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRepository_Commits(t *testing.T) {
	dir := setupRepo(t)
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	commits, err := repo.Commits()
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Message != "initial" {
		t.Errorf("expected oldest-first order, got %q first", commits[0].Message)
	}
	if commits[1].AuthorEmail != "alice@example.com" {
		t.Errorf("expected author email alice@example.com, got %q", commits[1].AuthorEmail)
	}
	if len(commits[1].Parents) != 1 {
		t.Errorf("expected 1 parent, got %d", len(commits[1].Parents))
	}
}

func TestRepository_Modifications(t *testing.T) {
	dir := setupRepo(t)
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commits, err := repo.Commits()
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}

	mods, err := repo.Modifications(commits[1].Hash)
	if err != nil {
		t.Fatalf("Modifications: %v", err)
	}
	if len(mods) != 1 {
		t.Fatalf("expected 1 modification, got %d", len(mods))
	}
	if mods[0].NewPath != "a.c" {
		t.Errorf("expected new_path a.c, got %q", mods[0].NewPath)
	}
	if mods[0].Diff == "" {
		t.Error("expected non-empty diff text")
	}
}

func TestRepository_Annotate(t *testing.T) {
	dir := setupRepo(t)
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commits, err := repo.Commits()
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}

	annotation, err := repo.Annotate(commits[0].Hash, "a.c")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(annotation) != 3 {
		t.Fatalf("expected 3 annotated lines, got %d", len(annotation))
	}
	for _, e := range annotation {
		if len(e) < 40 {
			t.Errorf("expected entry to start with a SHA, got %q", e)
		}
	}
}

func TestRepository_Annotate_UnknownPath(t *testing.T) {
	dir := setupRepo(t)
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commits, err := repo.Commits()
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if _, err := repo.Annotate(commits[0].Hash, "does-not-exist.c"); err == nil {
		t.Fatal("expected error for unknown path")
	}
}
