package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/lint"
	"github.com/topowire/topowire/internal/loader"
)

func newLintCmd() *cobra.Command {
	var (
		outputFormat string
		rules        []string
	)

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check topology declarations for advisory issues",
		Long: `Lint checks a loadable topology for properties the author probably
did not intend. Unlike validate, lint findings do not make the topology
inconsistent.

Rules:
    TPW001: Network declares public subnets but no internet gateway
    TPW002: HTTP listener forwards traffic instead of redirecting to HTTPS
    TPW003: Health check interval or path is suspicious
    TPW004: Private subnet routes through a NAT gateway in another zone

Examples:
    topowire lint ./topology/
    topowire lint ./topology/ --rules TPW001,TPW004`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), args, outputFormat, rules)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "Rules to enable (default: all)")

	return cmd
}

func runLint(ctx context.Context, paths []string, format string, rules []string) error {
	result, err := loader.NewLoader().Load(ctx, paths...)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	lintResult := lint.Check(result.Topology, lint.Options{EnabledRules: rules})

	return outputLintResult(topowire.LintResult{
		Success: lintResult.Success,
		Issues:  lintResult.Issues,
	}, format)
}

func outputLintResult(result topowire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Println("No issues found.")
			return nil
		}

		for _, issue := range result.Issues {
			fmt.Printf("%s: %s %q: %s [%s]\n",
				issue.Severity, issue.Kind, issue.Entity, issue.Message, issue.Rule)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(2) // Exit code 2 for issues found
	}

	return nil
}
