package rewrite

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	engine "github.com/gnolang/tpath/internal/rewrite"
	"github.com/gnolang/tpath/internal/solver"
)

// DefaultConfigPath is the configuration file looked up when none is given.
const DefaultConfigPath = ".tpath.yaml"

// Solver backends.
const (
	SolverBounded = "bounded"
	SolverZ3      = "z3"
)

// Config represents the overall configuration of a run.
type Config struct {
	Name             string               `yaml:"name"`
	LoopBound        int                  `yaml:"loop_bound"`
	VisitUnsatPaths  bool                 `yaml:"visit_unsat_paths"`
	LogFoundBranches bool                 `yaml:"log_found_branches"`
	FoldConstants    bool                 `yaml:"fold_constants"`
	Solver           string               `yaml:"solver"`
	MaxComplexity    int                  `yaml:"max_complexity"`
	Bounded          solver.BoundedConfig `yaml:"bounded"`
	CacheDir         string               `yaml:"cache_dir"`
}

// DefaultConfig returns the configuration written by "tpath init".
func DefaultConfig() Config {
	def := engine.DefaultConfig()
	return Config{
		Name:             "tpath",
		LoopBound:        def.LoopBound,
		VisitUnsatPaths:  def.VisitUnsatPaths,
		LogFoundBranches: def.LogFoundBranches,
		FoldConstants:    true,
		Solver:           SolverBounded,
		MaxComplexity:    30,
		Bounded:          solver.DefaultBoundedConfig(),
	}
}

// LoadConfig reads a configuration file on top of the defaults. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return config, config.Validate()
}

// Validate reports settings no run can use.
func (c Config) Validate() error {
	switch c.Solver {
	case SolverBounded, SolverZ3:
	default:
		return fmt.Errorf("unknown solver %q", c.Solver)
	}
	if c.LoopBound < 0 {
		return fmt.Errorf("loop_bound must not be negative, got %d", c.LoopBound)
	}
	if c.MaxComplexity < 0 {
		return fmt.Errorf("max_complexity must not be negative, got %d", c.MaxComplexity)
	}
	return nil
}

// Write stores c as YAML at path.
func (c Config) Write(path string) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

func (c Config) engine() engine.Config {
	return engine.Config{
		LoopBound:        c.LoopBound,
		VisitUnsatPaths:  c.VisitUnsatPaths,
		LogFoundBranches: c.LogFoundBranches,
	}
}

// fingerprint describes every setting a rewritten file depends on.
func (c Config) fingerprint() string {
	return fmt.Sprintf("bound=%d unsat=%t fold=%t solver=%s radius=%d candidates=%d complexity=%d",
		c.LoopBound, c.VisitUnsatPaths, c.FoldConstants, c.Solver,
		c.Bounded.Radius, c.Bounded.MaxCandidates, c.MaxComplexity)
}

// NewSolver builds the configured solver backend, memoised.
func NewSolver(c Config) (solver.Solver, error) {
	bounded := solver.NewBounded(c.Bounded)
	switch c.Solver {
	case SolverBounded, "":
		return solver.NewMemo(bounded), nil
	case SolverZ3:
		s, err := z3Solver(bounded)
		if err != nil {
			return nil, err
		}
		return solver.NewMemo(s), nil
	default:
		return nil, fmt.Errorf("unknown solver %q", c.Solver)
	}
}
