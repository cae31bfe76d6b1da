package rewrite

import "github.com/gnolang/tpath/internal/syntax"

// resolve rewrites a branch condition over the parameters by replacing every
// variable with its value on the current path. Callees and member accesses
// stay as written.
func (e *engine) resolve(x syntax.Expr) (syntax.Expr, error) {
	switch x := x.(type) {
	case syntax.Literal, syntax.Member:
		return x, nil

	case syntax.Ident:
		return e.mem.Lookup(x.Name)

	case syntax.Binary:
		l, err := e.resolve(x.X)
		if err != nil {
			return nil, err
		}
		r, err := e.resolve(x.Y)
		if err != nil {
			return nil, err
		}
		return syntax.Bin(x.Op, l, r), nil

	case syntax.Cast:
		inner, err := e.resolve(x.X)
		if err != nil {
			return nil, err
		}
		return syntax.Cast{Type: x.Type, X: inner}, nil

	case syntax.Call:
		args := make([]syntax.Expr, len(x.Args))
		for i, arg := range x.Args {
			r, err := e.resolve(arg)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return syntax.Call{Fun: x.Fun, Args: args}, nil

	case syntax.Prefix:
		switch x.Op {
		case syntax.OpNot, syntax.OpNeg, syntax.OpPlus:
			inner, err := e.resolve(x.X)
			if err != nil {
				return nil, err
			}
			return syntax.Prefix{Op: x.Op, X: inner}, nil
		}
		return nil, syntax.Unsupported(x, "in a condition")

	case syntax.Paren:
		inner, err := e.resolve(x.X)
		if err != nil {
			return nil, err
		}
		return syntax.Paren{X: inner}, nil

	default:
		return nil, syntax.Unsupported(x, "in a condition")
	}
}
