package rewrite

import (
	"strings"

	"github.com/gnolang/tpath/internal/solver"
	"github.com/gnolang/tpath/internal/syntax"
)

// Label tells which arm of a branch a case reaches.
type Label string

const (
	LabelTrue  Label = "TRUE"
	LabelFalse Label = "FALSE"
)

// Case is a feasible path ending in a return or a throw, with the parameter
// values that drive execution down it.
type Case struct {
	Assignment solver.Assignment
	Label      Label
	Path       []syntax.Expr
}

// Trace renders the path condition as a conjunction.
func (c Case) Trace() string {
	return trace(c.Path)
}

func trace(conds []syntax.Expr) string {
	parts := make([]string, len(conds))
	for i, cond := range conds {
		if p, ok := cond.(syntax.Prefix); ok && p.Op == syntax.OpNot {
			parts[i] = cond.String()
			continue
		}
		parts[i] = "(" + cond.String() + ")"
	}
	return strings.Join(parts, " && ")
}

// Result is the outcome of rewriting one function.
type Result struct {
	Body  syntax.Block
	Cases []Case
}
