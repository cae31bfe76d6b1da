package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tpath/formatter"
	"github.com/gnolang/tpath/internal/watch"
	"github.com/gnolang/tpath/rewrite"
)

// engine flags, shared by rewrite and cases
var (
	loopBound   int
	visitUnsat  bool
	logBranches bool
	solverName  string
	funcNames   []string
)

// rewrite command flags
var (
	writeFiles bool
	outDir     string
	watchMode  bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [paths...]",
	Short: "Rewrite functions into their enumerated execution paths",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		if watchMode && writeFiles && outDir == "" {
			fmt.Println("error: --watch cannot rewrite files in place, use --out")
			os.Exit(1)
		}

		engine := newEngine(cmd)
		formatter.SetColor(os.Stderr, noColor)
		opts := outputOptions{write: writeFiles, outDir: outDir}

		if watchMode {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if err := runWatch(ctx, logger, engine, args, opts); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Error watching files", zap.Error(err))
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		failed, err := runRewrite(ctx, logger, engine, args, opts, os.Stdout, os.Stderr)
		cancel()
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	addEngineFlags(rewriteCmd)
	rewriteCmd.Flags().BoolVarP(&writeFiles, "write", "w", false, "Write the rewritten files in place")
	rewriteCmd.Flags().StringVar(&outDir, "out", "", "Write the rewritten files into this directory")
	rewriteCmd.Flags().BoolVar(&watchMode, "watch", false, "Rewrite files again whenever they change")
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&loopBound, "bound", 0, "Number of times every loop is unrolled")
	cmd.Flags().BoolVar(&visitUnsat, "visit-unsat", false, "Rewrite branches the solver found infeasible")
	cmd.Flags().BoolVar(&logBranches, "log-branches", false, "Log every discovered path")
	cmd.Flags().StringVar(&solverName, "solver", "", "Solver backend (bounded or z3)")
	cmd.Flags().StringArrayVar(&funcNames, "func", nil, "Only rewrite the named function (repeatable)")
}

// loadConfig reads the configuration file; flags set on the command line
// take precedence over it.
func loadConfig(cmd *cobra.Command) (rewrite.Config, error) {
	config, err := rewrite.LoadConfig(cfgFile)
	if err != nil {
		return config, err
	}

	flags := cmd.Flags()
	if flags.Changed("bound") {
		config.LoopBound = loopBound
	}
	if flags.Changed("visit-unsat") {
		config.VisitUnsatPaths = visitUnsat
	}
	if flags.Changed("log-branches") {
		config.LogFoundBranches = logBranches
	}
	if flags.Changed("solver") {
		config.Solver = solverName
	}
	return config, config.Validate()
}

func newEngine(cmd *cobra.Command) rewrite.RewriteEngine {
	config, err := loadConfig(cmd)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	engine, err := rewrite.New(config, rewrite.WithLogger(logger), rewrite.WithFuncs(funcNames...))
	if err != nil {
		logger.Fatal("Failed to initialize rewrite engine", zap.Error(err))
	}
	return engine
}

type outputOptions struct {
	write  bool
	outDir string
}

func (o outputOptions) persist() bool {
	return o.write || o.outDir != ""
}

// runRewrite rewrites paths and either prints the regenerated sources to
// stdout or writes them to disk. The report goes to stderr. It reports
// whether any function failed.
func runRewrite(
	ctx context.Context,
	logger *zap.Logger,
	engine rewrite.RewriteEngine,
	paths []string,
	opts outputOptions,
	stdout, stderr io.Writer,
) (bool, error) {
	results, err := rewrite.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		return true, err
	}

	failed := false
	for _, result := range results {
		if result.Failed() {
			failed = true
		}
		if !opts.persist() {
			fmt.Fprint(stdout, string(result.Source))
			continue
		}
		if result.Rewritten() == 0 {
			continue
		}
		path, err := result.Write(opts.outDir)
		if err != nil {
			logger.Error("Error writing rewritten file", zap.String("file", result.Filename), zap.Error(err))
			failed = true
			continue
		}
		fmt.Fprintf(stderr, "wrote %s\n", path)
	}

	fmt.Fprint(stderr, formatter.GenerateReport(failedOnly(results)))
	fmt.Fprintln(stderr, formatter.Summary(results))
	return failed, nil
}

// failedOnly keeps the functions that were not rewritten, for the report
// printed next to the sources.
func failedOnly(results []*rewrite.FileResult) []*rewrite.FileResult {
	var out []*rewrite.FileResult
	for _, result := range results {
		r := &rewrite.FileResult{Filename: result.Filename}
		for _, fr := range result.Funcs {
			if fr.Err != "" || fr.Skipped != "" {
				r.Funcs = append(r.Funcs, fr)
			}
		}
		if len(r.Funcs) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// runWatch rewrites the files below paths whenever they are written, until
// ctx is cancelled.
func runWatch(ctx context.Context, logger *zap.Logger, engine rewrite.RewriteEngine, paths []string, opts outputOptions) error {
	out, err := filepath.Abs(opts.outDir)
	if err != nil {
		return err
	}

	w, err := watch.New(func(ctx context.Context, filename string) {
		if opts.outDir != "" && within(filename, out) {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := runRewrite(ctx, logger, engine, []string{filename}, opts, os.Stdout, os.Stderr); err != nil {
			logger.Error("Error processing file", zap.String("file", filename), zap.Error(err))
		}
	}, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, path := range paths {
		if err := w.Add(path); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "watching %s\n", strings.Join(paths, ", "))
	return w.Run(ctx)
}

func within(filename, dir string) bool {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
