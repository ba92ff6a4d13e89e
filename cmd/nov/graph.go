package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/viz"
)

var (
	graphFocal int
	graphStart int
	graphEnd   int
	graphTop   int
	graphCyto  string
	graphLimit int
)

func init() {
	graphCmd.Flags().IntVar(&graphFocal, "focal", 0, "Use the configured comparison window of this focal year")
	graphCmd.Flags().IntVar(&graphStart, "start", 0, "First year of an explicit window")
	graphCmd.Flags().IntVar(&graphEnd, "end", 0, "Last year of an explicit window")
	graphCmd.Flags().IntVar(&graphTop, "top", 10, "Number of heaviest pairs to list")
	graphCmd.Flags().StringVar(&graphCyto, "cytoscape", "", "Write the heaviest pairs as Cytoscape.js elements to this file")
	graphCmd.Flags().IntVar(&graphLimit, "cytoscape-edges", 500, "Maximum pairs in the Cytoscape export (0 for all)")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Summarize the co-occurrence graph of a comparison window",
	Long: `Build the reference co-occurrence graph of a comparison window and
summarize it: pairs, nodes, total weight and the most frequent pairs.

Examples:
  nov graph --focal 2020
  nov graph --start 2016 --end 2019 --top 20
  nov graph --focal 2020 --cytoscape graph.json`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

// GraphResult is the response for the graph command.
type GraphResult struct {
	Stats     cooc.Stats  `json:"stats"`
	Top       []cooc.Edge `json:"top"`
	Cytoscape string      `json:"cytoscape,omitempty"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	var w cooc.Window
	switch {
	case graphFocal != 0:
		var err error
		if w, err = cfg.WindowPolicy().For(graphFocal); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	case graphStart != 0 || graphEnd != 0:
		w = cooc.Window{Start: graphStart, End: graphEnd}
	default:
		exitWithError(ExitError, "either --focal or --start/--end is required")
	}

	store := mustLoadStore(repoRoot)
	g, err := cooc.BuildParallel(context.Background(), store.InRange(w.Start, w.End), w, cfg.GraphOptions(), cfg.Workers)
	if err != nil {
		exitWithError(ExitError, "building graph: %v", err)
	}

	result := GraphResult{Stats: g.Stats(), Top: topEdges(g.Edges(), graphTop)}
	if graphCyto != "" {
		data, err := viz.FromGraph(g, store.Lookup, graphLimit).ToCytoscapeJSON()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if err := os.WriteFile(graphCyto, data, 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", graphCyto, err)
		}
		result.Cytoscape = graphCyto
	}
	if humanOutput {
		s := result.Stats
		fmt.Printf("Window %s: %d pairs over %d references (%d self-loops)\n", s.Window, s.Edges, s.Nodes, s.SelfLoops)
		fmt.Printf("Total weight %d, heaviest pair %d\n", s.Total, s.MaxWeight)
		for _, e := range result.Top {
			fmt.Printf("  %6d  %d - %d\n", e.Weight, e.A, e.B)
		}
		if result.Cytoscape != "" {
			fmt.Printf("Cytoscape elements written to %s\n", result.Cytoscape)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// topEdges returns the n heaviest edges, ties broken by pair order.
func topEdges(edges []cooc.Edge, n int) []cooc.Edge {
	sorted := append([]cooc.Edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
