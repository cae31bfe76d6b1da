package rewrite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockRewriteEngine struct {
	mock.Mock
}

func (m *mockRewriteEngine) Run(ctx context.Context, filename string) (*FileResult, error) {
	args := m.Called(ctx, filename)
	result, _ := args.Get(0).(*FileResult)
	return result, args.Error(1)
}

func (m *mockRewriteEngine) RunSource(ctx context.Context, filename string, src []byte) (*FileResult, error) {
	args := m.Called(ctx, filename, src)
	result, _ := args.Get(0).(*FileResult)
	return result, args.Error(1)
}

// writeTree creates files below a fresh directory and returns it.
func writeTree(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("package p\n"), 0o644))
	}
	return dir
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	want := &FileResult{Filename: "test.go"}
	engine := new(mockRewriteEngine)
	engine.On("Run", mock.Anything, "test.go").Return(want, nil)

	got, err := ProcessFile(context.Background(), engine, "test.go")
	assert.NoError(t, err)
	assert.Same(t, want, got)
	engine.AssertExpectations(t)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	src := []byte("package main")
	want := &FileResult{Filename: "main.go"}
	engine := new(mockRewriteEngine)
	engine.On("RunSource", mock.Anything, "main.go", src).Return(want, nil)

	got, err := ProcessSource(context.Background(), engine, "main.go", src)
	assert.NoError(t, err)
	assert.Same(t, want, got)
	engine.AssertExpectations(t)
}

func TestProcessPathWalksGoSources(t *testing.T) {
	t.Parallel()
	dir := writeTree(t,
		"b.go",
		"a.go",
		"a_test.go",
		"README.md",
		"sub/c.go",
		"testdata/fixture.go",
		".hidden/d.go",
	)

	engine := new(mockRewriteEngine)
	for _, name := range []string{"a.go", "b.go", "sub/c.go"} {
		path := filepath.Join(dir, name)
		engine.On("Run", mock.Anything, path).Return(&FileResult{Filename: path}, nil)
	}

	results, err := ProcessPath(context.Background(), nil, engine, dir)
	require.NoError(t, err)

	var names []string
	for _, r := range results {
		rel, err := filepath.Rel(dir, r.Filename)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.go", "b.go", "sub/c.go"}, names)
	engine.AssertExpectations(t)
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, "a.go", "a_test.go")
	path := filepath.Join(dir, "a.go")

	engine := new(mockRewriteEngine)
	engine.On("Run", mock.Anything, path).Return(&FileResult{Filename: path}, nil)

	results, err := ProcessPath(context.Background(), nil, engine, path)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// tests are never rewritten
	results, err = ProcessPath(context.Background(), nil, engine, filepath.Join(dir, "a_test.go"))
	require.NoError(t, err)
	assert.Empty(t, results)
	engine.AssertNumberOfCalls(t, "Run", 1)
}

func TestProcessPathKeepsGoingAfterErrors(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, "good.go", "bad.go")
	good := filepath.Join(dir, "good.go")
	bad := filepath.Join(dir, "bad.go")
	errParse := errors.New("error parsing file")

	engine := new(mockRewriteEngine)
	engine.On("Run", mock.Anything, good).Return(&FileResult{Filename: good}, nil)
	engine.On("Run", mock.Anything, bad).Return(nil, errParse)

	core, logs := observer.New(zap.ErrorLevel)
	results, err := ProcessPath(context.Background(), zap.New(core), engine, dir)

	assert.ErrorIs(t, err, errParse)
	assert.Contains(t, err.Error(), bad)
	require.Len(t, results, 1)
	assert.Equal(t, good, results[0].Filename)

	entries := logs.FilterMessage("Error processing file").All()
	require.Len(t, entries, 1)
	assert.Equal(t, bad, entries[0].ContextMap()["file"])
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, "a.go", "b.go")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := new(mockRewriteEngine)
	results, err := ProcessPath(ctx, nil, engine, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	engine.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestProcessPathMissing(t *testing.T) {
	t.Parallel()
	_, err := ProcessPath(context.Background(), nil, new(mockRewriteEngine), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessFilesStopsAtFirstFailingPath(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, "a.go")
	path := filepath.Join(dir, "a.go")

	engine := new(mockRewriteEngine)
	engine.On("Run", mock.Anything, path).Return(&FileResult{Filename: path}, nil)

	results, err := ProcessFiles(context.Background(), zap.NewNop(), engine,
		[]string{path, filepath.Join(dir, "missing.go"), path})
	assert.Error(t, err)
	assert.Len(t, results, 1)
	engine.AssertNumberOfCalls(t, "Run", 1)
}
