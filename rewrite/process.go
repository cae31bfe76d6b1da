package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// ProcessFiles rewrites every path in paths. Directories are walked
// recursively.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine RewriteEngine,
	paths []string,
) ([]*FileResult, error) {
	var all []*FileResult
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path)
		all = append(all, results...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
	}
	return all, nil
}

// ProcessPath rewrites a single file or every Go file below a directory.
// Files are processed concurrently; results are sorted by file name. The
// results of files that succeeded are returned together with any error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine RewriteEngine,
	path string,
) ([]*FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		result, err := ProcessFile(ctx, engine, path)
		if err != nil {
			return nil, err
		}
		return []*FileResult{result}, nil
	}

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]*FileResult, 0, len(files))
		errs    []error
	)

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())
	bar := newProgressBar(len(files), path)

loop:
	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			result, err := ProcessFile(ctx, engine, fp)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				errs = append(errs, fmt.Errorf("%s: %w", fp, err))
			} else {
				results = append(results, result)
			}
			bar.Add(1)
		}(filePath)
	}
	wg.Wait()
	bar.Finish()

	if err := ctx.Err(); err != nil {
		return sortResults(results), err
	}
	return sortResults(results), errors.Join(errs...)
}

func ProcessFile(ctx context.Context, engine RewriteEngine, filePath string) (*FileResult, error) {
	return engine.Run(ctx, filePath)
}

func ProcessSource(ctx context.Context, engine RewriteEngine, filename string, source []byte) (*FileResult, error) {
	return engine.RunSource(ctx, filename, source)
}

// collectFiles lists the Go sources below root, leaving out tests, testdata
// and hidden directories.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "testdata" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if hasDesiredExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func hasDesiredExtension(path string) bool {
	return filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go")
}

func sortResults(results []*FileResult) []*FileResult {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})
	return results
}

// newProgressBar draws on stderr, and only when stderr is a terminal.
func newProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(isatty.IsTerminal(os.Stderr.Fd())),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
