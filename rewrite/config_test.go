package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	config, err := LoadConfig(filepath.Join(t.TempDir(), ".tpath.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".tpath.yaml")
	content := `name: custom
loop_bound: 4
visit_unsat_paths: false
bounded:
  radius: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	want := DefaultConfig()
	want.Name = "custom"
	want.LoopBound = 4
	want.VisitUnsatPaths = false
	want.Bounded.Radius = 3
	assert.Equal(t, want, config)
}

func TestConfigWriteRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".tpath.yaml")
	config := DefaultConfig()
	config.Solver = SolverZ3
	config.CacheDir = "/tmp/tpath"
	require.NoError(t, config.Write(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", "loop_bound: [", "error parsing"},
		{"unknown solver", "solver: sat4j", `unknown solver "sat4j"`},
		{"negative bound", "loop_bound: -1", "loop_bound must not be negative"},
		{"negative complexity", "max_complexity: -2", "max_complexity must not be negative"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), ".tpath.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	config := DefaultConfig()
	config.Solver = "unknown"
	_, err := New(config)
	assert.Error(t, err)
}

func TestFingerprintTracksSettings(t *testing.T) {
	t.Parallel()
	base := DefaultConfig()
	assert.Equal(t, base.fingerprint(), DefaultConfig().fingerprint())

	changes := []func(*Config){
		func(c *Config) { c.LoopBound++ },
		func(c *Config) { c.VisitUnsatPaths = !c.VisitUnsatPaths },
		func(c *Config) { c.FoldConstants = !c.FoldConstants },
		func(c *Config) { c.Solver = SolverZ3 },
		func(c *Config) { c.Bounded.Radius++ },
		func(c *Config) { c.MaxComplexity++ },
	}
	for i, change := range changes {
		c := DefaultConfig()
		change(&c)
		assert.NotEqual(t, base.fingerprint(), c.fingerprint(), "change %d", i)
	}

	// logging does not change the output
	c := DefaultConfig()
	c.LogFoundBranches = true
	assert.Equal(t, base.fingerprint(), c.fingerprint())
}
