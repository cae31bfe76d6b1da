package solver

import (
	"context"
	"go/constant"
	"sort"

	"github.com/gnolang/tpath/internal/syntax"
)

// BoundedConfig limits the search of the Bounded solver.
type BoundedConfig struct {
	// Radius is the distance around zero and around every integer literal
	// of the query that candidate values are drawn from.
	Radius int64 `yaml:"radius"`
	// MaxCandidates caps the number of candidate assignments tried per
	// query. A query without a model within the cap is reported infeasible.
	MaxCandidates int `yaml:"max_candidates"`
}

// DefaultBoundedConfig returns the default search limits.
func DefaultBoundedConfig() BoundedConfig {
	return BoundedConfig{
		Radius:        16,
		MaxCandidates: 200000,
	}
}

// Bounded is a pure Go solver that searches a finite candidate space for a
// model. It is sound for the models it returns and incomplete: a query it
// reports infeasible may have a model outside the searched space.
type Bounded struct {
	cfg BoundedConfig
}

var _ Solver = (*Bounded)(nil)

// NewBounded creates a bounded solver. Non-positive limits fall back to the
// defaults.
func NewBounded(cfg BoundedConfig) *Bounded {
	def := DefaultBoundedConfig()
	if cfg.Radius <= 0 {
		cfg.Radius = def.Radius
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	return &Bounded{cfg: cfg}
}

// ctxCheckInterval is how many candidates are tried between checks of the
// context.
const ctxCheckInterval = 1024

func (b *Bounded) Solve(ctx context.Context, params []syntax.Param, conds []syntax.Expr) (Assignment, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	vars, err := Variables(params, conds)
	if err != nil {
		return nil, false, err
	}

	lits := collectLiterals(conds)
	domains := make([][]syntax.Literal, len(vars))
	for i, v := range vars {
		domains[i] = b.domain(v.Sort, lits)
	}

	env := make(Env, len(vars))
	idx := make([]int, len(vars))
	for tried := 0; tried < b.cfg.MaxCandidates; tried++ {
		if tried%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
		}
		for i, v := range vars {
			env[v.Key] = domains[i][idx[i]]
		}
		if env.Holds(conds) {
			return assignment(params, env), true, nil
		}
		if !next(idx, domains) {
			break
		}
	}
	return nil, false, nil
}

// next advances the odometer idx over domains, first position fastest.
func next(idx []int, domains [][]syntax.Literal) bool {
	for i := range idx {
		idx[i]++
		if idx[i] < len(domains[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}

type literals struct {
	ints    []int64
	strings []string
}

func collectLiterals(conds []syntax.Expr) literals {
	var lits literals
	for _, c := range conds {
		syntax.InspectExpr(c, func(x syntax.Expr) bool {
			lit, ok := x.(syntax.Literal)
			if !ok {
				return true
			}
			v, err := syntax.Constant(lit)
			if err != nil {
				return true
			}
			switch v.Kind() {
			case constant.Int:
				if n, exact := constant.Int64Val(v); exact {
					lits.ints = append(lits.ints, n)
				}
			case constant.String:
				lits.strings = append(lits.strings, constant.StringVal(v))
			}
			return true
		})
	}
	return lits
}

// domain lists the candidate values of a sort, simplest first.
func (b *Bounded) domain(s Sort, lits literals) []syntax.Literal {
	switch s {
	case SortBool:
		return []syntax.Literal{syntax.Bool(false), syntax.Bool(true)}

	case SortString:
		seen := map[string]bool{"": true}
		out := []syntax.Literal{syntax.Str("")}
		for _, str := range lits.strings {
			for _, cand := range []string{str, str + "_"} {
				if !seen[cand] {
					seen[cand] = true
					out = append(out, syntax.Str(cand))
				}
			}
		}
		return out

	default:
		seen := make(map[int64]bool)
		var values []int64
		add := func(n int64) {
			if !seen[n] {
				seen[n] = true
				values = append(values, n)
			}
		}
		for n := -b.cfg.Radius; n <= b.cfg.Radius; n++ {
			add(n)
		}
		for _, l := range lits.ints {
			for d := int64(-1); d <= 1; d++ {
				add(l + d)
				add(-l + d)
			}
		}
		sort.Slice(values, func(i, j int) bool {
			ai, aj := abs(values[i]), abs(values[j])
			if ai != aj {
				return ai < aj
			}
			return values[i] > values[j]
		})
		out := make([]syntax.Literal, len(values))
		for i, n := range values {
			out[i] = syntax.Int(n)
		}
		return out
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// assignment reads the parameter values out of env. Parameters the query
// does not mention get the zero value of their type.
func assignment(params []syntax.Param, env Env) Assignment {
	a := make(Assignment, 0, len(params))
	for _, p := range params {
		v, ok := env[p.Name]
		if !ok {
			v = zero(SortOf(p.Type))
		}
		a = append(a, Binding{Name: p.Name, Value: v})
	}
	return a
}

func zero(s Sort) syntax.Literal {
	switch s {
	case SortInt:
		return syntax.Int(0)
	case SortBool:
		return syntax.Bool(false)
	case SortString:
		return syntax.Str("")
	default:
		return syntax.Nil()
	}
}
