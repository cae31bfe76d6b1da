//go:build !z3

package rewrite

import (
	"errors"

	"github.com/gnolang/tpath/internal/solver"
)

// ErrNoZ3 is returned when the z3 solver is requested from a binary built
// without it.
var ErrNoZ3 = errors.New("tpath was built without z3 support (rebuild with -tags z3)")

func z3Solver(solver.Solver) (solver.Solver, error) {
	return nil, ErrNoZ3
}
