// Command topowire validates declarative network topology files and emits a
// normalized document for an external provisioning tool.
//
// Usage:
//
//	topowire validate ./topology/     Check topology invariants
//	topowire build ./topology/        Emit the normalized document
//	topowire lint ./topology/         Check for advisory issues
//	topowire init myproject           Create new project
//	topowire version                  Show version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/topowire/topowire/internal/ctxlog"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "topowire",
		Short: "Validate and emit network topology declarations",
		Long: `topowire loads HCL network topology declarations, checks addressing and
placement invariants, and emits a normalized document.

Declare your topology in block files:

    network "main" {
        cidr = "10.0.0.0/16"
    }

    subnet "public_a" {
        network    = "main"
        cidr       = "10.0.1.0/24"
        zone       = "us-east-1a"
        visibility = "public"
    }

Then validate and emit:

    topowire validate ./topology/
    topowire build ./topology/ -o topology.json`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newValidateCmd(),
		newBuildCmd(),
		newListCmd(),
		newLintCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newWatchCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("topowire %s\n", getVersion())
		},
	}
}
