package syntax

import "strings"

const (
	precOr = iota + 1
	precAnd
	precCompare
	precAdd
	precMul
	precUnary
	precPrimary
)

// Precedence returns the binding strength of op, higher binds tighter.
func (op BinaryOp) Precedence() int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return precCompare
	case OpAdd, OpSub:
		return precAdd
	default:
		return precMul
	}
}

// Precedence returns the binding strength of the outermost operator of x.
// Assignments bind loosest.
func Precedence(x Expr) int {
	switch x := x.(type) {
	case Binary:
		return x.Op.Precedence()
	case Prefix:
		return precUnary
	case Assign:
		return 0
	default:
		return precPrimary
	}
}

func operand(x Expr, min int) string {
	if Precedence(x) < min {
		return "(" + x.String() + ")"
	}
	return x.String()
}

func (e Literal) String() string {
	return e.Value
}

func (e Ident) String() string {
	return e.Name
}

func (e Binary) String() string {
	p := e.Op.Precedence()
	return operand(e.X, p) + " " + e.Op.String() + " " + operand(e.Y, p+1)
}

func (e Prefix) String() string {
	inner := operand(e.X, precUnary)
	// keep "- -x" and "+ +x" from reading as a decrement or increment
	if p, ok := e.X.(Prefix); ok && (p.Op == e.Op || p.Op == OpInc || p.Op == OpDec) {
		inner = "(" + e.X.String() + ")"
	}
	return e.Op.String() + inner
}

func (e Postfix) String() string {
	return operand(e.X, precPrimary) + e.Op.String()
}

func (e Paren) String() string {
	return "(" + e.X.String() + ")"
}

func (e Cast) String() string {
	return e.Type + "(" + e.X.String() + ")"
}

func (e Call) String() string {
	var b strings.Builder
	b.WriteString(operand(e.Fun, precPrimary))
	b.WriteByte('(')
	for i, arg := range e.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (e Member) String() string {
	return operand(e.X, precPrimary) + "." + e.Sel
}

func (e Assign) String() string {
	return e.Name + " " + e.Op.String() + " " + e.Value.String()
}

func (s Block) String() string {
	if len(s.List) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{ ")
	for i, stmt := range s.List {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(stmt.String())
	}
	b.WriteString(" }")
	return b.String()
}

func (s If) String() string {
	result := "if " + s.Cond.String() + " " + AsBlock(s.Then).String()
	if s.Else != nil {
		result += " else " + AsBlock(s.Else).String()
	}
	return result
}

func (s While) String() string {
	return "while " + s.Cond.String() + " " + AsBlock(s.Body).String()
}

func (s For) String() string {
	var init, cond string
	if s.Init != nil {
		init = s.Init.String()
	}
	if s.Cond != nil {
		cond = s.Cond.String()
	}
	post := make([]string, len(s.Post))
	for i, p := range s.Post {
		post[i] = p.String()
	}
	return "for " + init + "; " + cond + "; " + strings.Join(post, ", ") + " " + AsBlock(s.Body).String()
}

func (s Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

func (s Throw) String() string {
	if s.Value == nil {
		return "throw"
	}
	return "throw " + s.Value.String()
}

func (s ExprStmt) String() string {
	return s.X.String()
}

func (s LocalDecl) String() string {
	result := "var " + s.Name
	if s.Type != "" {
		result += " " + s.Type
	}
	if s.Value != nil {
		result += " = " + s.Value.String()
	}
	return result
}
