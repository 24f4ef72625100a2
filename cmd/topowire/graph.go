package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire/internal/graph"
	"github.com/topowire/topowire/internal/loader"
)

func newGraphCmd() *cobra.Command {
	var (
		outputFormat     string
		clusterByNetwork bool
	)

	cmd := &cobra.Command{
		Use:   "graph [paths...]",
		Short: "Generate DOT graph of the topology",
		Long: `Generate a DOT or Mermaid format graph of the declared topology.

The output can be rendered with Graphviz:
    topowire graph ./topology | dot -Tpng -o topology.png

Or used in GitHub markdown (Mermaid format):
    topowire graph ./topology -f mermaid

Examples:
    topowire graph ./topology
    topowire graph ./topology -c              # cluster by network
    topowire graph ./topology -f mermaid      # mermaid format`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), args, outputFormat, clusterByNetwork)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&clusterByNetwork, "cluster", "c", false, "Cluster subnets and gateways by network")

	return cmd
}

func runGraph(ctx context.Context, paths []string, format string, cluster bool) error {
	result, err := loader.NewLoader().Load(ctx, paths...)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if result.Topology.EntityCount() == 0 {
		return fmt.Errorf("no entities found")
	}

	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	gen := &graph.Generator{
		Format:           graphFormat,
		ClusterByNetwork: cluster,
	}

	return gen.Generate(result.Topology, os.Stdout)
}
