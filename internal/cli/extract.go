package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/graphio"
)

// extractCommand creates the extract command for building a graph from a board.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		board   string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the dependency graph for a board",
		Long: `Extract the dependency graph for a board.

The extract command runs the configured extraction command (emerge in
pretend mode by default), parses the emitted dependency tree, builds the
dual-root dependency graph, and writes it as JSON.

Extraction output is cached locally, so repeated runs for an unchanged
board skip the Portage invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd.Context(), board, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&board, "board", "b", "", "build target board (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <board>-graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, board, output string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if board == "" {
		board = cfg.Board
	}
	if board == "" {
		return fmt.Errorf("no board given: pass --board or set one in the config")
	}
	if output == "" {
		output = board + "-graph.json"
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize extraction: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Extracting dependencies for %s...", board))
	spinner.Start()

	g, err := runner.ExtractGraph(ctx, board)
	if err != nil {
		spinner.StopWithError("Extraction failed")
		return err
	}
	spinner.Stop()

	if err := graphio.WriteGraphFile(g, output); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}

	printSuccess("Extracted dependency graph for %s", board)
	printStats(g.Len(), edgeCount(g), false)
	printFile(output)
	return nil
}

func edgeCount(g *depgraph.DependencyGraph) int {
	count := 0
	for _, n := range g.AllNodes() {
		count += len(n.Dependencies())
	}
	return count
}
