//go:build z3

package rewrite

import (
	"github.com/gnolang/tpath/internal/solver"
	"github.com/gnolang/tpath/internal/solver/z3"
)

func z3Solver(fallback solver.Solver) (solver.Solver, error) {
	return z3.New(fallback), nil
}
