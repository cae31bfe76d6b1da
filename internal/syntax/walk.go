package syntax

// Inspect traverses the statement tree rooted at s in depth-first order,
// calling f for every statement. If f returns false the children of that
// statement are skipped.
func Inspect(s Stmt, f func(Stmt) bool) {
	if s == nil || !f(s) {
		return
	}
	switch s := s.(type) {
	case Block:
		for _, child := range s.List {
			Inspect(child, f)
		}
	case If:
		Inspect(s.Then, f)
		Inspect(s.Else, f)
	case While:
		Inspect(s.Body, f)
	case For:
		Inspect(s.Init, f)
		Inspect(s.Body, f)
	}
}

// InspectExpr traverses the expression tree rooted at x in depth-first
// order. If f returns false the operands of that node are skipped.
func InspectExpr(x Expr, f func(Expr) bool) {
	if x == nil || !f(x) {
		return
	}
	switch x := x.(type) {
	case Binary:
		InspectExpr(x.X, f)
		InspectExpr(x.Y, f)
	case Prefix:
		InspectExpr(x.X, f)
	case Postfix:
		InspectExpr(x.X, f)
	case Paren:
		InspectExpr(x.X, f)
	case Cast:
		InspectExpr(x.X, f)
	case Call:
		InspectExpr(x.Fun, f)
		for _, arg := range x.Args {
			InspectExpr(arg, f)
		}
	case Member:
		InspectExpr(x.X, f)
	case Assign:
		InspectExpr(x.Value, f)
	}
}

// IsClosed reports whether x is built from literals only, so that it can be
// evaluated without an environment.
func IsClosed(x Expr) bool {
	closed := true
	InspectExpr(x, func(n Expr) bool {
		switch n.(type) {
		case Literal, Binary, Prefix, Paren:
			return true
		default:
			closed = false
			return false
		}
	})
	return closed
}
