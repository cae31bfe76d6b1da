package solver

import (
	"fmt"
	"go/constant"

	"github.com/gnolang/tpath/internal/syntax"
)

// Env binds variable keys (parameter names and opaque term renderings) to
// literal values.
type Env map[string]syntax.Literal

// Bind returns a substituted copy of x where every variable is replaced by
// its value in env. Casts are dropped: sorts do not distinguish integer
// widths.
func (env Env) Bind(x syntax.Expr) (syntax.Expr, error) {
	switch x := x.(type) {
	case syntax.Literal:
		return x, nil
	case syntax.Ident:
		return env.value(x.Name)
	case syntax.Call, syntax.Member:
		return env.value(x.String())
	case syntax.Paren:
		return env.Bind(x.X)
	case syntax.Cast:
		return env.Bind(x.X)
	case syntax.Prefix:
		inner, err := env.Bind(x.X)
		if err != nil {
			return nil, err
		}
		return syntax.Prefix{Op: x.Op, X: inner}, nil
	case syntax.Binary:
		l, err := env.Bind(x.X)
		if err != nil {
			return nil, err
		}
		r, err := env.Bind(x.Y)
		if err != nil {
			return nil, err
		}
		return syntax.Bin(x.Op, l, r), nil
	default:
		return nil, syntax.Unsupported(x, "in a path condition")
	}
}

func (env Env) value(key string) (syntax.Literal, error) {
	v, ok := env[key]
	if !ok {
		return syntax.Literal{}, &syntax.LookupError{Name: key}
	}
	return v, nil
}

// Eval evaluates x under env.
func (env Env) Eval(x syntax.Expr) (constant.Value, error) {
	bound, err := env.Bind(x)
	if err != nil {
		return nil, err
	}
	return syntax.Constant(bound)
}

// Holds reports whether every condition evaluates to true under env. An
// evaluation failure such as a division by zero makes the conjunction false.
func (env Env) Holds(conds []syntax.Expr) bool {
	for _, c := range conds {
		v, err := env.Eval(c)
		if err != nil || v.Kind() != constant.Bool || !constant.BoolVal(v) {
			return false
		}
	}
	return true
}

// Satisfies checks an assignment against conds. Conditions that mention
// opaque terms cannot be checked and yield an error.
func Satisfies(a Assignment, conds []syntax.Expr) (bool, error) {
	env := make(Env, len(a))
	for _, b := range a {
		env[b.Name] = b.Value
	}
	for _, c := range conds {
		v, err := env.Eval(c)
		if err != nil {
			return false, fmt.Errorf("evaluating %s: %w", c, err)
		}
		if v.Kind() != constant.Bool {
			return false, fmt.Errorf("condition %s is not boolean", c)
		}
		if !constant.BoolVal(v) {
			return false, nil
		}
	}
	return true, nil
}
