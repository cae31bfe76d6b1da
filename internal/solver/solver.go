// Package solver decides the satisfiability of path conditions and produces
// concrete parameter values for satisfiable ones.
//
// A path condition is a conjunction of boolean expressions over the
// procedure's parameters. Calls and member accesses inside a condition are
// opaque: each distinct term is an unconstrained variable of the sort its
// context requires.
package solver

import (
	"context"
	"strings"

	"github.com/gnolang/tpath/internal/syntax"
)

// Solver decides whether the conjunction of conds is satisfiable. When it is,
// the returned assignment binds every parameter to a literal, in parameter
// order. An unsatisfiable or undecidable query returns (nil, false, nil).
// Errors are reserved for malformed queries and cancellation.
type Solver interface {
	Solve(ctx context.Context, params []syntax.Param, conds []syntax.Expr) (Assignment, bool, error)
}

// Func adapts an ordinary function to the Solver interface.
type Func func(ctx context.Context, params []syntax.Param, conds []syntax.Expr) (Assignment, bool, error)

// Solve calls f.
func (f Func) Solve(ctx context.Context, params []syntax.Param, conds []syntax.Expr) (Assignment, bool, error) {
	return f(ctx, params, conds)
}

// Binding is the value chosen for one parameter.
type Binding struct {
	Name  string
	Value syntax.Literal
}

// Assignment is an ordered list of parameter bindings.
type Assignment []Binding

// Lookup returns the value bound to name.
func (a Assignment) Lookup(name string) (syntax.Literal, bool) {
	for _, b := range a {
		if b.Name == name {
			return b.Value, true
		}
	}
	return syntax.Literal{}, false
}

// Map returns the bindings keyed by name, values in source form.
func (a Assignment) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, b := range a {
		m[b.Name] = b.Value.Value
	}
	return m
}

func (a Assignment) String() string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = b.Name + "=" + b.Value.Value
	}
	return strings.Join(parts, ", ")
}
