package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/loader"
)

// newValidateCmd creates the "validate" subcommand for checking topology
// invariants.
func newValidateCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Validate topology invariants",
		Long: `Validate loads topology declarations and checks every invariant.

Checks performed:
  - Addressing: subnet blocks are contained in their network and do not overlap
  - Routing: each subnet has a route table, destinations are unambiguous
  - Placement: NAT gateways and load balancers reside in public subnets
  - Reachability: service address assignment matches subnet visibility

Examples:
    topowire validate ./topology/
    topowire validate main.hcl --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

// runValidate loads declarations and runs the full validation pass.
func runValidate(ctx context.Context, paths []string, format string) error {
	result, err := loader.NewLoader().Load(ctx, paths...)
	if err != nil {
		validateResult := topowire.ValidateResult{
			Success: false,
			Errors:  []string{err.Error()},
		}
		return outputValidateResult(validateResult, format)
	}

	validateResult := topowire.ValidateResult{
		Entities: result.Topology.EntityCount(),
	}
	for v := range result.Topology.Validate() {
		validateResult.Violations = append(validateResult.Violations, v)
	}
	validateResult.Success = len(validateResult.Violations) == 0

	return outputValidateResult(validateResult, format)
}

func outputValidateResult(result topowire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Printf("Validation passed: %d entities OK\n", result.Entities)
			return nil
		}

		fmt.Println("Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Printf("  ERROR: %s\n", errMsg)
		}
		for _, v := range result.Violations {
			fmt.Printf("  VIOLATION: %s\n", v)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
