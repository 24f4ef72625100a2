package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/loader"
)

func newListCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List declared entities",
		Long: `List loads and displays all topology entities declared in the given
files or directories.

Examples:
    topowire list ./topology/
    topowire list ./topology/ --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runList(ctx context.Context, paths []string, format string) error {
	result, err := loader.NewLoader().Load(ctx, paths...)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	// Entities come back in declaration order already.
	listResult := topowire.ListResult{
		Entities: result.Entities,
	}

	return outputListResult(listResult, format)
}

func outputListResult(result topowire.ListResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(result.Entities) == 0 {
			fmt.Println("No entities found.")
			return nil
		}

		fmt.Printf("Declared entities (%d):\n\n", len(result.Entities))
		for _, e := range result.Entities {
			fmt.Printf("  %s: %s\n", e.Name, e.Kind)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
