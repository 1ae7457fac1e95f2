// Package schedule implements the Scheduler & Sink (spec.md §4.5): it
// walks a repository's commit history, fans Commit Processor invocations
// out across a worker pool, and funnels their results through a single
// writer goroutine into the relational store. Grounded on coderisk's
// ingestion orchestrator fan-out, generalised from a fixed set of
// parallel saves into an errgroup.SetLimit-bounded worker pool over a
// dynamic task list.
package schedule

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/linemine/linemine/internal/diffalign"
	"github.com/linemine/linemine/internal/process"
	"github.com/linemine/linemine/internal/store"
	"github.com/linemine/linemine/internal/telemetry"
	"github.com/linemine/linemine/internal/vcs"
)

// Config configures one mining run.
type Config struct {
	RepoDir         string
	ExcludePrefixes []string
	Mode            diffalign.Mode
	NumWorkers      int
	ChunkSize       int // results channel buffer; spec.md §6's --chunksize
	ProjectName     string
}

// method maps a Diff Aligner mode to the store.Method it is persisted
// under, so resume validation can tell a line-mode store from a
// block-mode one.
func (c Config) method() store.Method {
	if c.Mode == diffalign.Block {
		return store.MethodBlocks
	}
	return store.MethodLines
}

// Run mines cfg.RepoDir into st, honoring resume: if st already holds a
// metadata row, it is validated against cfg before any work begins, and
// commits it already has results for are skipped (spec.md §4.5's
// "Resume" contract). Run reports completion without error when there is
// nothing left to do.
func Run(ctx context.Context, cfg Config, st *store.Store) error {
	repo, err := vcs.Open(cfg.RepoDir)
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	commits, err := repo.Commits()
	if err != nil {
		return fmt.Errorf("schedule: enumerate commits: %w", err)
	}
	repoCommits := make(map[string]bool, len(commits))
	for _, c := range commits {
		repoCommits[c.Hash] = true
	}

	fresh, err := st.IsFresh()
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	var persisted map[string]bool
	if fresh {
		if err := st.Initialize("linemine", repo.Root(), nowStamp(), cfg.method()); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
		persisted = map[string]bool{}
	} else {
		persisted, err = st.ValidateResume(repo.Root(), cfg.method(), repoCommits)
		if err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
	}

	var tasks []string
	for _, c := range commits {
		if !persisted[c.Hash] {
			tasks = append(tasks, c.Hash)
		}
	}
	if len(tasks) == 0 {
		telemetry.WithFields(logrus.Fields{"repository": repo.Root()}).Info("nothing to do, store already covers all commits")
		return nil
	}

	numWorkers := cfg.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}

	bufSize := cfg.ChunkSize
	if bufSize < 1 {
		bufSize = 1
	}
	results := make(chan process.Result, bufSize)
	sinkErrCh := make(chan error, 1)
	go func() {
		sinkErrCh <- sink(st, results)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for _, hash := range tasks {
		hash := hash
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Stateless worker: a fresh repository handle per task.
			workerRepo, err := vcs.Open(cfg.RepoDir)
			if err != nil {
				return fmt.Errorf("worker open repo: %w", err)
			}
			result, err := process.Process(workerRepo, hash, cfg.ExcludePrefixes, cfg.Mode, cfg.ProjectName)
			if err != nil {
				return fmt.Errorf("process commit %s: %w", hash, err)
			}
			select {
			case results <- result:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	workErr := g.Wait()
	close(results)
	sinkErr := <-sinkErrCh

	if workErr != nil {
		return fmt.Errorf("schedule: worker pool: %w", workErr)
	}
	if sinkErr != nil {
		return fmt.Errorf("schedule: sink: %w", sinkErr)
	}
	return nil
}

// sink is the store's single writer: every result crosses this one
// goroutine, so AppendCommit's atomic per-commit transaction is never
// called concurrently (spec.md §5's "relational store is single-writer").
func sink(st *store.Store, results <-chan process.Result) error {
	for r := range results {
		if err := st.AppendCommit(r.Commit, r.Edits); err != nil {
			return err
		}
	}
	return nil
}
