package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "diff <document1> <document2>",
		Short: "Compare two emitted topology documents",
		Long: `Diff compares two normalized topology documents and reports added,
removed, and modified entities. Documents may be JSON or YAML.

Examples:
    topowire diff before.json after.json
    topowire diff before.yaml after.json --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runDiff(file1, file2, format string) error {
	result, err := differ.CompareFiles(file1, file2)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		printDiffText(result)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if result.Summary.Total > 0 {
		os.Exit(1)
	}

	return nil
}

func printDiffText(result *differ.Result) {
	if result.Summary.Total == 0 {
		fmt.Println("No differences.")
		return
	}

	printEntries := func(heading, marker string, entries []topowire.DiffEntry) {
		if len(entries) == 0 {
			return
		}
		fmt.Printf("%s (%d):\n", heading, len(entries))
		for _, e := range entries {
			fmt.Printf("  %s %s\n", marker, e.Entity)
			for _, c := range e.Changes {
				fmt.Printf("      %s\n", c)
			}
		}
	}

	printEntries("Added", "+", result.Diff.Added)
	printEntries("Removed", "-", result.Diff.Removed)
	printEntries("Modified", "~", result.Diff.Modified)

	fmt.Printf("\n%d added, %d removed, %d modified\n",
		result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
}
