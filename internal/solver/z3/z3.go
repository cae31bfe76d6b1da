//go:build z3

// Package z3 implements the solver capability on top of the Z3 SMT solver.
// It requires cgo and libz3, and is compiled only with the z3 build tag.
package z3

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aclements/go-z3/z3"

	"github.com/gnolang/tpath/internal/solver"
	"github.com/gnolang/tpath/internal/syntax"
)

// Solver decides path conditions with Z3 over unbounded integers. Queries
// involving strings are handed to Fallback.
type Solver struct {
	Fallback solver.Solver
}

var _ solver.Solver = (*Solver)(nil)

// New creates a Z3 backed solver.
func New(fallback solver.Solver) *Solver {
	return &Solver{Fallback: fallback}
}

func (s *Solver) Solve(ctx context.Context, params []syntax.Param, conds []syntax.Expr) (solver.Assignment, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	vars, err := solver.Variables(params, conds)
	if err != nil {
		return nil, false, err
	}
	for _, v := range vars {
		if v.Sort == solver.SortString {
			if s.Fallback == nil {
				return nil, false, fmt.Errorf("z3: string variable %s is not supported", v.Key)
			}
			return s.Fallback.Solve(ctx, params, conds)
		}
	}

	// a context per query keeps concurrent callers independent
	zctx := z3.NewContext(nil)
	q := &query{ctx: zctx, consts: make(map[string]z3.Value, len(vars))}
	for _, v := range vars {
		if v.Sort == solver.SortBool {
			q.consts[v.Key] = zctx.BoolConst(v.Key)
		} else {
			q.consts[v.Key] = zctx.IntConst(v.Key)
		}
	}

	zs := z3.NewSolver(zctx)
	for _, c := range conds {
		b, err := q.boolean(c)
		if err != nil {
			return nil, false, err
		}
		zs.Assert(b)
	}

	sat, err := zs.Check()
	if err != nil {
		// undecided queries are reported infeasible
		return nil, false, nil
	}
	if !sat {
		return nil, false, nil
	}

	model := zs.Model()
	asg := make(solver.Assignment, 0, len(params))
	for _, p := range params {
		asg = append(asg, solver.Binding{Name: p.Name, Value: q.value(model, p)})
	}
	return asg, true, nil
}

type query struct {
	ctx    *z3.Context
	consts map[string]z3.Value
}

func (q *query) value(model *z3.Model, p syntax.Param) syntax.Literal {
	c, ok := q.consts[p.Name]
	if !ok {
		switch solver.SortOf(p.Type) {
		case solver.SortBool:
			return syntax.Bool(false)
		case solver.SortString:
			return syntax.Str("")
		case solver.SortInt:
			return syntax.Int(0)
		default:
			return syntax.Nil()
		}
	}
	switch v := model.Eval(c, true).(type) {
	case z3.Bool:
		b, _ := v.AsBool()
		return syntax.Bool(b)
	case z3.Int:
		if n, isLit, ok := v.AsInt64(); isLit && ok {
			return syntax.Int(n)
		}
		// out of int64 range: keep the exact decimal form
		return syntax.Literal{Kind: syntax.LitInt, Value: v.String()}
	default:
		return syntax.Nil()
	}
}

func (q *query) boolean(x syntax.Expr) (z3.Bool, error) {
	v, err := q.term(x)
	if err != nil {
		return z3.Bool{}, err
	}
	b, ok := v.(z3.Bool)
	if !ok {
		return z3.Bool{}, syntax.Unsupported(x, "non-boolean condition")
	}
	return b, nil
}

func (q *query) integer(x syntax.Expr) (z3.Int, error) {
	v, err := q.term(x)
	if err != nil {
		return z3.Int{}, err
	}
	n, ok := v.(z3.Int)
	if !ok {
		return z3.Int{}, syntax.Unsupported(x, "non-integer operand")
	}
	return n, nil
}

func (q *query) term(x syntax.Expr) (z3.Value, error) {
	switch x := x.(type) {
	case syntax.Literal:
		return q.literal(x)

	case syntax.Ident:
		c, ok := q.consts[x.Name]
		if !ok {
			return nil, &syntax.LookupError{Name: x.Name}
		}
		return c, nil

	case syntax.Call, syntax.Member:
		c, ok := q.consts[x.String()]
		if !ok {
			return nil, &syntax.LookupError{Name: x.String()}
		}
		return c, nil

	case syntax.Paren:
		return q.term(x.X)

	case syntax.Cast:
		return q.term(x.X)

	case syntax.Prefix:
		switch x.Op {
		case syntax.OpNot:
			b, err := q.boolean(x.X)
			if err != nil {
				return nil, err
			}
			return b.Not(), nil
		case syntax.OpNeg:
			n, err := q.integer(x.X)
			if err != nil {
				return nil, err
			}
			return n.Neg(), nil
		case syntax.OpPlus:
			return q.integer(x.X)
		}
		return nil, syntax.Unsupported(x, "in a path condition")

	case syntax.Binary:
		return q.binary(x)

	default:
		return nil, syntax.Unsupported(x, "in a path condition")
	}
}

func (q *query) literal(l syntax.Literal) (z3.Value, error) {
	switch l.Kind {
	case syntax.LitBool:
		b, err := strconv.ParseBool(l.Value)
		if err != nil {
			return nil, err
		}
		return q.ctx.FromBool(b), nil
	case syntax.LitInt, syntax.LitChar:
		v, err := syntax.Constant(l)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(v.ExactString(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("z3: literal %s: %w", l.Value, err)
		}
		return q.ctx.FromInt(n, q.ctx.IntSort()), nil
	default:
		return nil, syntax.Unsupported(l, l.Kind.String()+" literal in a path condition")
	}
}

func (q *query) binary(x syntax.Binary) (z3.Value, error) {
	if x.Op.IsLogical() {
		l, err := q.boolean(x.X)
		if err != nil {
			return nil, err
		}
		r, err := q.boolean(x.Y)
		if err != nil {
			return nil, err
		}
		if x.Op == syntax.OpAnd {
			return l.And(r), nil
		}
		return l.Or(r), nil
	}

	lv, err := q.term(x.X)
	if err != nil {
		return nil, err
	}
	rv, err := q.term(x.Y)
	if err != nil {
		return nil, err
	}

	if lb, ok := lv.(z3.Bool); ok {
		rb, ok := rv.(z3.Bool)
		if !ok {
			return nil, syntax.Unsupported(x, "mixed operand sorts")
		}
		switch x.Op {
		case syntax.OpEq:
			return lb.Eq(rb), nil
		case syntax.OpNeq:
			return lb.NE(rb), nil
		}
		return nil, syntax.Unsupported(x, "arithmetic on booleans")
	}

	l, lok := lv.(z3.Int)
	r, rok := rv.(z3.Int)
	if !lok || !rok {
		return nil, syntax.Unsupported(x, "mixed operand sorts")
	}
	switch x.Op {
	case syntax.OpAdd:
		return l.Add(r), nil
	case syntax.OpSub:
		return l.Sub(r), nil
	case syntax.OpMul:
		return l.Mul(r), nil
	case syntax.OpDiv:
		return l.Div(r), nil
	case syntax.OpMod:
		return l.Rem(r), nil
	case syntax.OpEq:
		return l.Eq(r), nil
	case syntax.OpNeq:
		return l.NE(r), nil
	case syntax.OpLt:
		return l.LT(r), nil
	case syntax.OpLte:
		return l.LE(r), nil
	case syntax.OpGt:
		return l.GT(r), nil
	case syntax.OpGte:
		return l.GE(r), nil
	}
	return nil, syntax.Unsupported(x, "in a path condition")
}
