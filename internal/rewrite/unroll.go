package rewrite

import "github.com/gnolang/tpath/internal/syntax"

// unroll replaces a loop by bound nested branches:
//
//	while c { B }  =>  if c { B; if c { B; ... if c { B } } }
func unroll(cond syntax.Expr, body []syntax.Stmt, bound int) syntax.If {
	if bound <= 1 {
		return syntax.If{Cond: cond, Then: syntax.Block{List: body}}
	}
	next := unroll(cond, body, bound-1)
	return syntax.If{Cond: cond, Then: syntax.Block{List: concat(body, []syntax.Stmt{next})}}
}

func unrollWhile(w syntax.While, bound int) syntax.If {
	return unroll(w.Cond, syntax.Statements(w.Body), bound)
}

// unrollFor hoists the init statement in front of the unrolled branches and
// runs the post statement at the end of every level.
func unrollFor(f syntax.For, bound int) ([]syntax.Stmt, error) {
	if len(f.Post) > 1 {
		return nil, syntax.Unsupported(f, "more than one post statement")
	}

	var out []syntax.Stmt
	switch f.Init.(type) {
	case nil:
	case syntax.LocalDecl, syntax.ExprStmt:
		out = append(out, f.Init)
	default:
		return nil, syntax.Unsupported(f.Init, "for loop init")
	}

	cond := f.Cond
	if cond == nil {
		cond = syntax.Bool(true)
	}
	body := syntax.Statements(f.Body)
	if len(f.Post) == 1 {
		body = concat(body, []syntax.Stmt{syntax.Expression(f.Post[0])})
	}
	return append(out, unroll(cond, body, bound)), nil
}

// concat returns a fresh slice; arms are shared between branches and must
// never be appended to in place.
func concat(a, b []syntax.Stmt) []syntax.Stmt {
	out := make([]syntax.Stmt, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
