package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linemine/linemine/internal/config"
	"github.com/linemine/linemine/internal/format"
	"github.com/linemine/linemine/internal/schedule"
	"github.com/linemine/linemine/internal/store"
)

func newMineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine <repo> <outfile>",
		Short: "Extract line-level edits from a repository into a relational store",
		Args:  cobra.ExactArgs(2),
		RunE:  runMine,
	}

	cmd.Flags().String("exclude", "", "file of path prefixes to exclude, one per line")
	cmd.Flags().Int("numprocesses", 0, "worker pool size (default: hardware concurrency)")
	cmd.Flags().Int("chunksize", 1, "size of the result buffer between workers and the store writer")
	cmd.Flags().Bool("use-blocks", false, "segment edits in block mode instead of line mode")

	return cmd
}

func runMine(cmd *cobra.Command, args []string) error {
	repo, outfile := args[0], args[1]

	excludeFile, _ := cmd.Flags().GetString("exclude")
	numProcesses, _ := cmd.Flags().GetInt("numprocesses")
	chunkSize, _ := cmd.Flags().GetInt("chunksize")
	useBlocks, _ := cmd.Flags().GetBool("use-blocks")
	configPath, _ := cmd.Flags().GetString("config")

	overrides := map[string]interface{}{
		"repo":       repo,
		"outfile":    outfile,
		"use_blocks": useBlocks,
		"chunksize":  chunkSize,
	}
	if numProcesses > 0 {
		overrides["numprocesses"] = numProcesses
	}

	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		return err
	}

	excludePrefixes, err := config.ExcludePrefixes(excludeFile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Outfile)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}
	defer st.Close()

	schedCfg := schedule.Config{
		RepoDir:         cfg.Repo,
		ExcludePrefixes: excludePrefixes,
		Mode:            cfg.Mode(),
		NumWorkers:      cfg.NumProcesses,
		ChunkSize:       cfg.ChunkSize,
		ProjectName:     format.BaseName(cfg.Repo),
	}

	if err := schedule.Run(context.Background(), schedCfg, st); err != nil {
		if errors.Is(err, store.ErrResumeMismatch) {
			return fmt.Errorf("mine: %w (outfile %s was built for a different repository or method)", err, cfg.Outfile)
		}
		return fmt.Errorf("mine: %w", err)
	}

	fmt.Printf("%smined %s into %s%s\n", format.Dim, cfg.Repo, cfg.Outfile, format.Reset)
	return nil
}
