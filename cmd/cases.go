package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tpath/formatter"
	"github.com/gnolang/tpath/rewrite"
)

// cases command flags
var (
	casesJsonOutput bool
	casesOutPath    string
)

var casesCmd = &cobra.Command{
	Use:   "cases [paths...]",
	Short: "Print the inputs that reach every returning path",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		engine := newEngine(cmd)
		formatter.SetColor(os.Stdout, noColor)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		failed, err := runCases(ctx, logger, engine, args, casesJsonOutput, casesOutPath, os.Stdout)
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
	addEngineFlags(casesCmd)
	casesCmd.Flags().BoolVar(&casesJsonOutput, "json", false, "Output cases in JSON format")
	casesCmd.Flags().StringVarP(&casesOutPath, "output", "o", "", "Output path (when using JSON)")
}

func runCases(
	ctx context.Context,
	logger *zap.Logger,
	engine rewrite.RewriteEngine,
	paths []string,
	isJson bool,
	jsonOutput string,
	stdout io.Writer,
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
	}

	if !isJson {
		fmt.Fprint(stdout, formatter.GenerateReport(results))
		fmt.Fprintln(stdout, formatter.Summary(results))
		return failed, nil
	}

	if jsonOutput == "" {
		return failed, formatter.WriteJSON(stdout, results)
	}
	f, err := os.Create(jsonOutput)
	if err != nil {
		return true, fmt.Errorf("error creating JSON output file: %w", err)
	}
	defer f.Close()
	if err := formatter.WriteJSON(f, results); err != nil {
		return true, fmt.Errorf("error writing JSON output file: %w", err)
	}
	return failed, nil
}
