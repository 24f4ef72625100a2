package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/topowire/topowire/internal/ctxlog"
	"github.com/topowire/topowire/internal/emit"
	"github.com/topowire/topowire/internal/loader"
)

// newWatchCmd creates the "watch" subcommand for auto-validating on file
// changes.
func newWatchCmd() *cobra.Command {
	var (
		validateOnly bool
		debounce     time.Duration
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Auto-validate on topology file changes",
		Long: `Watch monitors topology files for changes and automatically revalidates.

The watch command:
- Monitors the given directories for .hcl file changes
- Runs validation on each change
- Rebuilds the document if validation passes (unless --validate-only)
- Debounces rapid changes to avoid excessive runs

Examples:
    topowire watch ./topology/
    topowire watch ./topology/ --validate-only
    topowire watch ./topology/ --debounce 1s -o topology.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), args, watchOptions{
				validateOnly: validateOnly,
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
			})
		},
	}

	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "Only run validation, skip build")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for build (default: stdout)")

	return cmd
}

type watchOptions struct {
	validateOnly bool
	debounce     time.Duration
	outputFormat string
	outputFile   string
}

// runWatch monitors topology files and revalidates on changes.
func runWatch(ctx context.Context, paths []string, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dirs, err := resolveWatchDirs(paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	for _, dir := range dirs {
		if err := addDirRecursive(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fmt.Printf("Watching: %s\n", dir)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initial pass
	fmt.Println("Running initial validation...")
	runValidateAndBuild(ctx, paths, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Only watch topology files
			if !strings.HasSuffix(event.Name, ".hcl") {
				continue
			}

			// Only process write/create events
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Printf("\n[%s] Change detected, revalidating...\n", time.Now().Format("15:04:05"))
			runValidateAndBuild(ctx, paths, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// resolveWatchDirs converts watch paths to unique directories.
func resolveWatchDirs(paths []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			absPath = filepath.Dir(absPath)
		}

		if !seen[absPath] {
			seen[absPath] = true
			dirs = append(dirs, absPath)
		}
	}

	return dirs, nil
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// runValidateAndBuild validates the topology and optionally emits the document.
func runValidateAndBuild(ctx context.Context, paths []string, opts watchOptions) {
	logger := ctxlog.FromContext(ctx)

	result, err := loader.NewLoader().Load(ctx, paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return
	}

	violations := 0
	for v := range result.Topology.Validate() {
		violations++
		fmt.Printf("  VIOLATION: %s\n", v)
	}
	if violations > 0 {
		fmt.Printf("Validation failed with %d violation(s), skipping build\n", violations)
		return
	}

	fmt.Printf("Validation passed: %d entities OK\n", result.Topology.EntityCount())
	logger.Debug("watch validation passed", "entities", result.Topology.EntityCount())

	if opts.validateOnly {
		return
	}

	doc := emit.FromTopology(result.Topology)

	var data []byte
	switch opts.outputFormat {
	case "json":
		data, err = emit.ToJSON(doc)
	case "yaml":
		data, err = emit.ToYAML(doc)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", opts.outputFormat)
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		return
	}

	if opts.outputFile == "" {
		fmt.Println("Build successful")
		return
	}

	if err := os.WriteFile(opts.outputFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return
	}
	fmt.Printf("Build successful, wrote %s\n", opts.outputFile)
}
