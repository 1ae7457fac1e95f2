package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linemine/linemine/internal/format"
	"github.com/linemine/linemine/internal/network"
	"github.com/linemine/linemine/internal/store"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <outfile>",
		Short: "Summarize a store's commits, edits, and derived networks",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := store.Open(args[0])
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer st.Close()

	var commitCount, editCount int
	if err := st.DB().Get(&commitCount, `SELECT COUNT(*) FROM commits`); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if err := st.DB().Get(&editCount, `SELECT COUNT(*) FROM edits`); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	coEdits, err := network.CoEditingEdges(st.DB())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	bipartite, err := network.AuthorFileEdges(st.DB())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	dag, err := network.DAGEdges(st.DB())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	summary := fmt.Sprintf(
		"%scommits%s   %d\n%sedits%s     %d\n%sco-edit%s   %d edges\n%sauthor-file%s %d edges\n%sauthor-dag%s  %d edges",
		format.Bold, format.Reset, commitCount,
		format.Bold, format.Reset, editCount,
		format.Bold, format.Reset, len(coEdits),
		format.Bold, format.Reset, len(bipartite),
		format.Bold, format.Reset, len(dag),
	)
	fmt.Println(format.FormatBorderedText(summary, args[0]))
	return nil
}
