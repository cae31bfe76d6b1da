// Package rewrite implements bounded symbolic execution of a single
// procedure. The body is rewritten into a loop-free tree of single-condition
// branches in which every path is self-contained, while the feasible paths
// ending in a return or a throw are collected with concrete parameter
// values.
package rewrite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/tpath/internal/memory"
	"github.com/gnolang/tpath/internal/solver"
	"github.com/gnolang/tpath/internal/syntax"
)

// Rewrite runs the engine over fn. On error no partial result is returned.
func Rewrite(ctx context.Context, fn syntax.Func, s solver.Solver, cfg Config, opts ...Option) (*Result, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if !cfg.LogFoundBranches {
		o.logger = zap.NewNop()
	}

	root := &engine{
		run: &run{
			params: fn.Params,
			solver: s,
			cfg:    cfg,
			logger: o.logger.With(zap.String("func", fn.Name)),
		},
		mem: memory.New(fn.Params, o.memory...),
	}
	body, err := root.visitBlock(ctx, fn.Body.List)
	if err != nil {
		return nil, fmt.Errorf("rewriting %s: %w", fn.Name, err)
	}
	return &Result{Body: body, Cases: root.results()}, nil
}

// run holds what every path of one rewrite shares.
type run struct {
	params []syntax.Param
	solver solver.Solver
	cfg    Config
	logger *zap.Logger
}

// engine is one node of the fork tree. It owns the path condition and
// memory state of its path and lazily creates one child per branch arm.
type engine struct {
	*run
	conds []syntax.Expr
	mem   *memory.State
	cases []Case

	taken    *engine
	notTaken *engine
}

// fork creates a child whose path condition extends e's by cond.
func (e *engine) fork(cond syntax.Expr) *engine {
	conds := make([]syntax.Expr, 0, len(e.conds)+1)
	conds = append(conds, e.conds...)
	return &engine{
		run:   e.run,
		conds: append(conds, cond),
		mem:   e.mem.Fork(),
	}
}

func (e *engine) child(taken bool, cond syntax.Expr) *engine {
	if taken {
		if e.taken == nil {
			e.taken = e.fork(cond)
		}
		return e.taken
	}
	if e.notTaken == nil {
		e.notTaken = e.fork(cond)
	}
	return e.notTaken
}

// results lists the cases found on e's path: its own first, then those of
// the taken arm, then those of the other.
func (e *engine) results() []Case {
	out := append([]Case(nil), e.cases...)
	if e.taken != nil {
		out = append(out, e.taken.results()...)
	}
	if e.notTaken != nil {
		out = append(out, e.notTaken.results()...)
	}
	return out
}

func (e *engine) visitBlock(ctx context.Context, list []syntax.Stmt) (syntax.Block, error) {
	stmts, err := canonicalize(list, e.cfg.bound())
	if err != nil {
		return syntax.Block{}, err
	}
	out := make([]syntax.Stmt, 0, len(stmts))
	for _, s := range stmts {
		r, err := e.visitStmt(ctx, s)
		if err != nil {
			return syntax.Block{}, err
		}
		out = append(out, r)
	}
	return syntax.Block{List: out}, nil
}

func (e *engine) visitStmt(ctx context.Context, s syntax.Stmt) (syntax.Stmt, error) {
	switch s := s.(type) {
	case syntax.LocalDecl:
		if err := e.mem.Declare(s.Name, s.Type, s.Value); err != nil {
			return nil, err
		}
		return s, nil
	case syntax.ExprStmt:
		if err := e.effect(s.X); err != nil {
			return nil, err
		}
		return s, nil
	case syntax.If:
		return e.visitIf(ctx, s)
	case syntax.Return, syntax.Throw:
		return s, nil
	default:
		return nil, syntax.Unsupported(s, "statement")
	}
}

// effect applies the side effect of an expression statement to the memory
// state. Calls are opaque and change nothing.
func (e *engine) effect(x syntax.Expr) error {
	switch x := x.(type) {
	case syntax.Assign:
		value := x.Value
		if op, ok := x.Op.Binary(); ok {
			value = syntax.Bin(op, syntax.Name(x.Name), x.Value)
		}
		return e.mem.Update(x.Name, value)
	case syntax.Postfix:
		return e.step(x, x.X)
	case syntax.Prefix:
		if x.Op != syntax.OpInc && x.Op != syntax.OpDec {
			return syntax.Unsupported(x, "expression statement")
		}
		return e.step(x, x.X)
	case syntax.Call:
		return nil
	default:
		return syntax.Unsupported(x, "expression statement")
	}
}

func (e *engine) step(x, operand syntax.Expr) error {
	id, ok := syntax.Unparen(operand).(syntax.Ident)
	if !ok {
		return syntax.Unsupported(x, "increment of a non-variable")
	}
	return e.mem.Update(id.Name, x)
}

func (e *engine) visitIf(ctx context.Context, n syntax.If) (syntax.Stmt, error) {
	n = decompose(n)
	cond, err := e.resolve(n.Cond)
	if err != nil {
		return nil, err
	}

	then, err := e.visitArm(ctx, true, cond, n.Then)
	if err != nil {
		return nil, err
	}
	els, err := e.visitArm(ctx, false, syntax.Not(cond), n.Else)
	if err != nil {
		return nil, err
	}

	return syntax.If{Cond: n.Cond, Then: then, Else: els}, nil
}

// visitArm checks the feasibility of one side of a branch and rewrites the
// arm on a child engine. It returns nil when the side has no statements to
// materialize.
func (e *engine) visitArm(ctx context.Context, taken bool, cond syntax.Expr, arm syntax.Stmt) (syntax.Stmt, error) {
	child := e.child(taken, cond)
	label := LabelTrue
	if !taken {
		label = LabelFalse
	}

	asg, sat, err := e.solver.Solve(ctx, e.params, child.conds)
	if err != nil {
		return nil, fmt.Errorf("solving %s: %w", trace(child.conds), err)
	}
	if arm == nil {
		if !sat {
			e.logger.Debug("UNSATISFIABLE", zap.String("path", trace(child.conds)))
		}
		return nil, nil
	}

	stmts := syntax.Flatten(syntax.Statements(arm))
	if sat {
		if syntax.ContainsTerminal(stmts) {
			e.cases = append(e.cases, Case{Assignment: asg, Label: label, Path: child.conds})
			e.logger.Info(string(label)+" PATH",
				zap.String("path", trace(child.conds)),
				zap.Stringer("assignment", asg))
		}
	} else {
		e.logger.Debug("UNSATISFIABLE", zap.String("path", trace(child.conds)))
		if !e.cfg.VisitUnsatPaths {
			return syntax.Block{List: stmts}, nil
		}
	}
	return child.visitBlock(ctx, stmts)
}
