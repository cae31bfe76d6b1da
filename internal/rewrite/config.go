package rewrite

import (
	"go.uber.org/zap"

	"github.com/gnolang/tpath/internal/memory"
)

// Config controls a rewrite. It is immutable for the duration of a run and
// shared by every path.
type Config struct {
	// LoopBound is the number of times every loop is unrolled. Zero is
	// treated as one.
	LoopBound int `yaml:"loop_bound"`
	// VisitUnsatPaths rewrites branches the solver found infeasible. When
	// false such branches are kept as written.
	VisitUnsatPaths bool `yaml:"visit_unsat_paths"`
	// LogFoundBranches logs every discovered path.
	LogFoundBranches bool `yaml:"log_found_branches"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		LoopBound:       2,
		VisitUnsatPaths: true,
	}
}

func (c Config) bound() int {
	if c.LoopBound < 1 {
		return 1
	}
	return c.LoopBound
}

type options struct {
	logger *zap.Logger
	memory []memory.Option
}

// Option customizes a rewrite.
type Option func(*options)

// WithLogger sets the logger found branches are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMemoryOptions configures the symbolic memory state of every path.
func WithMemoryOptions(opts ...memory.Option) Option {
	return func(o *options) {
		o.memory = append(o.memory, opts...)
	}
}
