package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/emit"
	"github.com/topowire/topowire/internal/loader"
)

func newBuildCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "build [paths...]",
		Short: "Emit the normalized topology document",
		Long: `Build loads topology declarations, validates them, and emits the
normalized document consumed by the provisioning tool.

Examples:
    topowire build ./topology/
    topowire build ./topology/ -o topology.json
    topowire build ./topology/ --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), args, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runBuild(ctx context.Context, paths []string, format, outputFile string) error {
	result, err := loader.NewLoader().Load(ctx, paths...)
	if err != nil {
		buildResult := topowire.BuildResult{
			Success: false,
			Errors:  []string{err.Error()},
		}
		return outputBuildResult(buildResult, format, outputFile)
	}

	// A document is only emitted for a consistent topology.
	var errs []string
	for v := range result.Topology.Validate() {
		errs = append(errs, v.String())
	}
	if len(errs) > 0 {
		buildResult := topowire.BuildResult{
			Success: false,
			Errors:  errs,
		}
		return outputBuildResult(buildResult, format, outputFile)
	}

	buildResult := topowire.BuildResult{
		Success:  true,
		Document: emit.FromTopology(result.Topology),
	}

	return outputBuildResult(buildResult, format, outputFile)
}

func outputBuildResult(result topowire.BuildResult, format, outputFile string) error {
	// Build failures go to stderr.
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("build failed")
	}

	var data []byte
	var err error

	switch format {
	case "json":
		data, err = emit.ToJSON(result.Document)
	case "yaml":
		data, err = emit.ToYAML(result.Document)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}

	return os.WriteFile(outputFile, data, 0644)
}
