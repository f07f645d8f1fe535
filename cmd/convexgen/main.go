// convexgen generates typed Go client bindings from Convex schema and
// function declarations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/convexgen"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		watch      bool
		flags      ProjectConfig
	)
	cmd := &cobra.Command{
		Use:   "convexgen",
		Short: "Generate typed Go bindings for a Convex deployment",
		Long: `convexgen reads a schema document and function declaration documents
and emits a single Go file with document structs, argument types and a
typed client for every declared query, mutation and action.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &ProjectConfig{}
			if configPath != "" {
				loaded, err := LoadProjectConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.merge(&flags)
			return run(cmd, cfg, watch)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "yaml project configuration file")
	cmd.Flags().StringVar(&flags.Schema, "schema", "", "schema document")
	cmd.Flags().StringSliceVar(&flags.Functions, "functions", nil, "function declaration documents")
	cmd.Flags().StringVarP(&flags.Out, "out", "o", "", "generated Go file")
	cmd.Flags().StringVar(&flags.Package, "package", "", "generated package name")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0, "concurrent file parses (0 = GOMAXPROCS)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate when an input document changes")
	return cmd
}

func run(cmd *cobra.Command, cfg *ProjectConfig, watch bool) error {
	gc := cfg.genConfig()
	if watch {
		// A warm parse cache makes reruns cheap: unchanged files hit the
		// cache by content hash.
		gc.Parser = convexgen.NewCachingParser(cfg.HelperStubs)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := convexgen.Generate(ctx, gc); err != nil {
		if !watch {
			return err
		}
		// In watch mode a broken input is a state to recover from, not a
		// reason to exit.
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", gc.OutFile)
	}
	if !watch {
		return nil
	}
	return watchLoop(ctx, cmd, gc, cfg)
}

// watchLoop regenerates whenever an input document changes. Events are
// debounced: editors fire several writes per save.
func watchLoop(ctx context.Context, cmd *cobra.Command, gc *convexgen.Config, cfg *ProjectConfig) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	inputs := map[string]bool{filepath.Clean(cfg.Schema): true}
	dirs := map[string]bool{filepath.Dir(cfg.Schema): true}
	for _, fn := range cfg.Functions {
		inputs[filepath.Clean(fn)] = true
		dirs[filepath.Dir(fn)] = true
	}
	// Watch directories, not files: renames and atomic saves replace the
	// watched inode otherwise.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %d documents\n", len(inputs))

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		case <-pending:
			if err := convexgen.Generate(ctx, gc); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", gc.OutFile)
		}
	}
}
