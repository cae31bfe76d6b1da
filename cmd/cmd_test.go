package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/tpath/rewrite"
)

const sampleSource = `package sample

func Sign(a int) int {
	if a > 0 {
		return 1
	}
	return 0
}

func Pair() (int, int) {
	return 1, 2
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(sampleSource), 0o644))
	return path
}

func newTestEngine(t *testing.T) rewrite.RewriteEngine {
	t.Helper()
	engine, err := rewrite.New(rewrite.DefaultConfig())
	require.NoError(t, err)
	return engine
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".tpath.yaml")

	got, err := initConfigurationFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	config, err := rewrite.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, rewrite.DefaultConfig(), config)

	_, err = initConfigurationFile(path, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = initConfigurationFile(path, true)
	assert.NoError(t, err)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tpath.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop_bound: 4\nvisit_unsat_paths: true\n"), 0o644))

	saved := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = saved })

	cmd := &cobra.Command{Use: "test"}
	addEngineFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--visit-unsat=false", "--log-branches"}))

	config, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4, config.LoopBound, "unset flags keep the file value")
	assert.False(t, config.VisitUnsatPaths)
	assert.True(t, config.LogFoundBranches)

	cmd = &cobra.Command{Use: "test"}
	addEngineFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--solver", "cvc5"}))
	_, err = loadConfig(cmd)
	assert.ErrorContains(t, err, `unknown solver "cvc5"`)
}

func TestRunRewritePrintsSources(t *testing.T) {
	t.Parallel()
	path := writeSample(t)

	var stdout, stderr bytes.Buffer
	failed, err := runRewrite(context.Background(), zap.NewNop(), newTestEngine(t), []string{path}, outputOptions{}, &stdout, &stderr)
	require.NoError(t, err)
	assert.True(t, failed, "Pair cannot be rewritten")

	assert.Contains(t, stdout.String(), "// Code generated by tpath from sample.go. DO NOT EDIT.")
	assert.Contains(t, stdout.String(), "} else {")

	report := stderr.String()
	assert.Contains(t, report, "error: Pair")
	assert.NotContains(t, report, "rewritten: Sign")
	assert.Contains(t, report, "1 file: 1 rewritten, 0 skipped, 1 failed, 2 cases")

	// the original is untouched
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleSource, string(src))
}

func TestRunRewriteWritesOutputDirectory(t *testing.T) {
	t.Parallel()
	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	_, err := runRewrite(context.Background(), zap.NewNop(), newTestEngine(t), []string{path},
		outputOptions{outDir: out}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "wrote "+filepath.Join(out, "sample.go"))

	written, err := os.ReadFile(filepath.Join(out, "sample.go"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "} else {")
}

func TestRunRewriteMissingPath(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	_, err := runRewrite(context.Background(), zap.NewNop(), newTestEngine(t),
		[]string{filepath.Join(t.TempDir(), "missing.go")}, outputOptions{}, &stdout, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCases(t *testing.T) {
	t.Parallel()
	path := writeSample(t)

	var stdout bytes.Buffer
	failed, err := runCases(context.Background(), zap.NewNop(), newTestEngine(t), []string{path}, false, "", &stdout)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Contains(t, stdout.String(), "rewritten: Sign")
	assert.Contains(t, stdout.String(), "= TRUE  (a > 0)")
	assert.Contains(t, stdout.String(), "= FALSE !(a > 0)")
}

func TestRunCasesJSONFile(t *testing.T) {
	t.Parallel()
	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "cases.json")

	var stdout bytes.Buffer
	_, err := runCases(context.Background(), zap.NewNop(), newTestEngine(t), []string{path}, true, out, &stdout)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var results []rewrite.FileResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	require.Len(t, results[0].Funcs, 2)
	assert.Len(t, results[0].Funcs[0].Cases, 2)
	assert.NotEmpty(t, results[0].Funcs[1].Err)
}

func TestWithin(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	assert.True(t, within(filepath.Join(dir, "a.go"), dir))
	assert.True(t, within(filepath.Join(dir, "sub", "a.go"), dir))
	assert.False(t, within(filepath.Join(filepath.Dir(dir), "a.go"), dir))
}
