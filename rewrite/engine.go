// Package rewrite drives the path rewriter over Go source files: it selects
// the functions of a file, rewrites each one into its path-enumerated form
// and collects the inputs that reach every returning path.
package rewrite

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"sort"
	"strings"

	"github.com/fzipp/gocyclo"
	"go.uber.org/zap"

	"github.com/gnolang/tpath/internal/cache"
	"github.com/gnolang/tpath/internal/directive"
	"github.com/gnolang/tpath/internal/frontend"
	"github.com/gnolang/tpath/internal/memory"
	engine "github.com/gnolang/tpath/internal/rewrite"
	"github.com/gnolang/tpath/internal/solver"
)

// RewriteEngine processes single files.
type RewriteEngine interface {
	Run(ctx context.Context, filename string) (*FileResult, error)
	RunSource(ctx context.Context, filename string, src []byte) (*FileResult, error)
}

// Engine rewrites the functions of Go files with one configuration.
type Engine struct {
	config Config
	solver solver.Solver
	logger *zap.Logger
	cache  *cache.Cache[FileResult]
	funcs  map[string]struct{}
}

var _ RewriteEngine = (*Engine)(nil)

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for errors and found branches.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSolver replaces the solver built from the configuration.
func WithSolver(s solver.Solver) Option {
	return func(e *Engine) {
		e.solver = s
	}
}

// WithFuncs restricts the run to the named functions. Methods match either
// their bare name or "Type.Method".
func WithFuncs(names ...string) Option {
	return func(e *Engine) {
		for _, name := range names {
			e.funcs[name] = struct{}{}
		}
	}
}

// New creates an engine for config.
func New(config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		config: config,
		logger: zap.NewNop(),
		funcs:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.solver == nil {
		s, err := NewSolver(config)
		if err != nil {
			return nil, err
		}
		e.solver = s
	}
	if config.CacheDir != "" {
		c, err := cache.New[FileResult](config.CacheDir)
		if err != nil {
			return nil, err
		}
		e.cache = c
	}
	return e, nil
}

// RewriteSource rewrites the functions of src with a one-off engine and
// returns the regenerated file.
func RewriteSource(ctx context.Context, config Config, filename string, src []byte, opts ...Option) (*FileResult, error) {
	e, err := New(config, opts...)
	if err != nil {
		return nil, err
	}
	return e.RunSource(ctx, filename, src)
}

// Run rewrites the file at filename.
func (e *Engine) Run(ctx context.Context, filename string) (*FileResult, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.RunSource(ctx, filename, src)
}

// RunSource rewrites src, reported under filename. Functions that cannot be
// rewritten are recorded in the result and keep their original body.
func (e *Engine) RunSource(ctx context.Context, filename string, src []byte) (*FileResult, error) {
	key := cache.Key(src, e.cacheSalt())
	if e.cache != nil {
		if cached, ok := e.cache.Get(filename, key); ok {
			return &cached, nil
		}
	}

	file, err := frontend.ParseFile(filename, src)
	if err != nil {
		return nil, err
	}
	directives, errs := directive.Parse(file.AST, file.Fset)
	for _, err := range errs {
		e.logger.Warn("Ignoring directive", zap.String("file", filename), zap.Error(err))
	}
	complexity := complexities(file.AST, file.Fset)

	result := &FileResult{Filename: filename}
	bodies := make(map[*ast.FuncDecl]*ast.BlockStmt)
	for _, decl := range file.Funcs() {
		if !e.selected(decl) {
			continue
		}
		fr, body, err := e.rewriteFunc(ctx, decl, directives.For(decl), complexity[file.Fset.Position(decl.Pos()).Offset])
		if err != nil {
			return nil, err
		}
		fr.Line = file.Fset.Position(decl.Pos()).Line
		if fr.Err != "" {
			e.logger.Error("Error rewriting function",
				zap.String("file", filename),
				zap.String("func", fr.Name),
				zap.String("error", fr.Err))
		}
		if body != nil {
			bodies[decl] = body
		}
		result.Funcs = append(result.Funcs, fr)
	}

	file.Replace(bodies)
	out, err := file.Format()
	if err != nil {
		return nil, err
	}
	result.Source = append([]byte(header(filename)), out...)

	if e.cache != nil {
		if err := e.cache.Set(filename, key, *result); err != nil {
			e.logger.Warn("Error writing cache", zap.String("file", filename), zap.Error(err))
		}
	}
	return result, nil
}

// rewriteFunc rewrites one declaration. Failures of the function itself are
// reported in the result; only a cancelled context is returned as an error.
func (e *Engine) rewriteFunc(ctx context.Context, decl *ast.FuncDecl, d directive.Directive, complexity int) (FuncResult, *ast.BlockStmt, error) {
	fr := FuncResult{Name: decl.Name.Name}
	if d.Skip {
		fr.Skipped = "skip directive"
		return fr, nil, nil
	}
	if limit := e.config.MaxComplexity; limit > 0 && complexity > limit {
		fr.Skipped = fmt.Sprintf("cyclomatic complexity %d exceeds %d", complexity, limit)
		return fr, nil, nil
	}

	fn, err := frontend.Convert(decl)
	if err != nil {
		fr.Err = err.Error()
		return fr, nil, nil
	}
	fr.Name = fn.Name

	cfg := e.config.engine()
	if d.Bound > 0 {
		cfg.LoopBound = d.Bound
	}
	res, err := engine.Rewrite(ctx, fn, e.solver, cfg,
		engine.WithLogger(e.logger),
		engine.WithMemoryOptions(memory.WithFolding(e.config.FoldConstants)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fr, nil, ctxErr
		}
		fr.Err = err.Error()
		return fr, nil, nil
	}

	body, err := frontend.Body(res.Body)
	if err != nil {
		fr.Err = err.Error()
		return fr, nil, nil
	}
	fr.Cases = convertCases(res.Cases)
	return fr, body, nil
}

func (e *Engine) selected(decl *ast.FuncDecl) bool {
	if len(e.funcs) == 0 {
		return true
	}
	if _, ok := e.funcs[decl.Name.Name]; ok {
		return true
	}
	fn := frontend.QualifiedName(decl)
	_, ok := e.funcs[fn]
	return ok
}

func (e *Engine) cacheSalt() string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return e.config.fingerprint() + " funcs=" + strings.Join(names, ",")
}

// complexities maps the offset of every function to its cyclomatic
// complexity.
func complexities(f *ast.File, fset *token.FileSet) map[int]int {
	stats := gocyclo.AnalyzeASTFile(f, fset, nil)
	m := make(map[int]int, len(stats))
	for _, stat := range stats {
		m[stat.Pos.Offset] = stat.Complexity
	}
	return m
}
