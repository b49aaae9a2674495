package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/trb-lang/trb/pkg/compiler"
	"github.com/trb-lang/trb/pkg/infer"
	"github.com/trb-lang/trb/pkg/ir"
)

// Config holds the application configuration
type Config struct {
	Debug   bool
	Workers int
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "trb",
		Short: "TRB gradual type checker",
		Long: `TRB is a gradually typed Ruby-like language that erases to plain Ruby.
This tool type-checks TRB sources, renders RBS signatures, generates Ruby,
and watches a project for changes.`,
		Example: `  # Type-check files once; exits non-zero on errors
  trb check lib/*.trb

  # Print inferred RBS signatures
  trb rbs lib/user.trb

  # Generate plain Ruby with the type layer erased
  trb ruby lib/user.trb

  # Recheck on every change
  trb watch .`,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVar(&cfg.Workers, "workers", 0, "Parallel compile workers (0 = default)")

	rootCmd.AddCommand(checkCmd(&cfg))
	rootCmd.AddCommand(rbsCmd(&cfg))
	rootCmd.AddCommand(rubyCmd(&cfg))
	rootCmd.AddCommand(watchCmd(&cfg))

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cfg *Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// resolvePaths expands explicit arguments, or falls back to the sources of
// the nearest trb.toml when no arguments are given.
func resolvePaths(args []string, comp *compiler.Compiler) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	configPath, config, err := compiler.FindProjectConfig(cwd)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("no files given and no trb.toml found")
	}
	baseDir := filepath.Dir(configPath)
	config.ApplyDependencies(comp, baseDir)
	return config.SourceFiles(baseDir)
}

func checkCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Type-check TRB files",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg)
			comp := compiler.NewChecked()
			paths, err := resolvePaths(args, comp.Compiler)
			if err != nil {
				return err
			}
			report := comp.CompileAllWithChecking(paths)
			printDiagnostics(cmd.OutOrStdout(), report.Diagnostics)
			if !report.Success {
				return fmt.Errorf("type check failed")
			}
			return nil
		},
	}
}

func rbsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rbs [files...]",
		Short: "Print RBS signatures, inferring missing annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg)
			return renderFiles(cmd, cfg, args, func(p *ir.Program) string {
				for _, result := range infer.InferProgram(p) {
					if !result.Failed() {
						result.Annotate()
					}
				}
				return ir.GenerateRBS(p)
			})
		},
	}
}

func rubyCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ruby [files...]",
		Short: "Generate plain Ruby with the type layer erased",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg)
			return renderFiles(cmd, cfg, args, func(p *ir.Program) string {
				opt := ir.NewOptimizer()
				opt.Optimize(p)
				return ir.GenerateRuby(p)
			})
		},
	}
}

func renderFiles(cmd *cobra.Command, cfg *Config, args []string, render func(*ir.Program) string) error {
	comp := compiler.NewChecked()
	paths, err := resolvePaths(args, comp.Compiler)
	if err != nil {
		return err
	}
	results := make(map[string]compiler.Result, len(paths))
	for _, path := range paths {
		result, err := comp.CompileWithIR(path)
		if err != nil {
			return err
		}
		results[path] = result
	}
	// each worker touches only its own file's program
	outcomes := compiler.ProcessFiles(cmd.Context(), paths, cfg.Workers,
		func(_ context.Context, path string) (string, error) {
			if results[path].Program == nil {
				return "", nil
			}
			return render(results[path].Program), nil
		})
	for _, path := range paths {
		printDiagnostics(cmd.ErrOrStderr(), results[path].Diagnostics)
		fmt.Fprint(cmd.OutOrStdout(), outcomes[path].Value)
	}
	return nil
}

func watchCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recheck the project on every file change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg)
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return watch(cmd.Context(), dir, cmd.OutOrStdout())
		},
	}
}

// watch rechecks on every write event. The incremental compiler skips
// everything whose hash and dependencies are unchanged, so each pass costs
// only the edited files.
func watch(ctx context.Context, dir string, out io.Writer) error {
	comp := compiler.NewChecked()

	recheck := func() {
		paths, err := resolvePaths(nil, comp.Compiler)
		if err != nil {
			// fall back to .trb files in the watched directory
			paths, _ = filepath.Glob(filepath.Join(dir, "*.trb"))
		}
		if len(paths) == 0 {
			return
		}
		report := comp.CompileAllWithChecking(paths)
		printDiagnostics(out, report.Diagnostics)
		if report.Success {
			fmt.Fprintf(out, "ok: %d files\n", len(paths))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}

	recheck()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				if filepath.Ext(event.Name) == ".trb" {
					slog.Debug("change detected", "path", event.Name)
					recheck()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		}
	}
}

func printDiagnostics(w io.Writer, diags []ir.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
	}
}
