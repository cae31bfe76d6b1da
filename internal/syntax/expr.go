package syntax

import "strconv"

// Expr represents an expression node.
type Expr interface {
	isExpr()
	String() string
}

// LitKind is the kind of a literal.
type LitKind int

const (
	_ LitKind = iota
	LitInt
	LitFloat
	LitString
	LitChar
	LitBool
	LitNil
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitBool:
		return "bool"
	case LitNil:
		return "nil"
	default:
		return "?"
	}
}

// Literal is a constant written in source form, e.g. 42, "abc", 'x', true.
type Literal struct {
	Kind  LitKind
	Value string
}

// Ident is a reference to a variable or parameter.
type Ident struct {
	Name string
}

// BinaryOp represents binary operators.
type BinaryOp int

const (
	_ BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// IsLogical reports whether op is && or ||.
func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// IsComparison reports whether op yields a boolean from two operands of the
// same kind.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return true
	default:
		return false
	}
}

// Binary is a binary operation X Op Y.
type Binary struct {
	Op BinaryOp
	X  Expr
	Y  Expr
}

// UnaryOp represents unary operators.
type UnaryOp int

const (
	_ UnaryOp = iota
	OpNot
	OpNeg
	OpPlus
	OpInc
	OpDec
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	case OpPlus:
		return "+"
	case OpInc:
		return "++"
	case OpDec:
		return "--"
	default:
		return "?"
	}
}

// Prefix is a prefix unary operation.
type Prefix struct {
	Op UnaryOp
	X  Expr
}

// Postfix is a postfix increment or decrement.
type Postfix struct {
	Op UnaryOp
	X  Expr
}

// Paren is a parenthesized expression.
type Paren struct {
	X Expr
}

// Cast converts X to the named type.
type Cast struct {
	Type string
	X    Expr
}

// Call is an invocation. The callee is opaque: it is never resolved or
// decomposed.
type Call struct {
	Fun  Expr
	Args []Expr
}

// Member is a member access X.Sel. It is treated as an opaque constant.
type Member struct {
	X   Expr
	Sel string
}

// AssignOp represents assignment operators.
type AssignOp int

const (
	_ AssignOp = iota
	AssignSet
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
)

func (op AssignOp) String() string {
	switch op {
	case AssignSet:
		return "="
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	case AssignMul:
		return "*="
	case AssignDiv:
		return "/="
	case AssignMod:
		return "%="
	default:
		return "?"
	}
}

// Binary returns the arithmetic operator a compound assignment applies.
// The second result is false for plain assignment.
func (op AssignOp) Binary() (BinaryOp, bool) {
	switch op {
	case AssignAdd:
		return OpAdd, true
	case AssignSub:
		return OpSub, true
	case AssignMul:
		return OpMul, true
	case AssignDiv:
		return OpDiv, true
	case AssignMod:
		return OpMod, true
	default:
		return 0, false
	}
}

// Assign is an assignment to a named variable.
type Assign struct {
	Op    AssignOp
	Name  string
	Value Expr
}

func (Literal) isExpr() {}
func (Ident) isExpr()   {}
func (Binary) isExpr()  {}
func (Prefix) isExpr()  {}
func (Postfix) isExpr() {}
func (Paren) isExpr()   {}
func (Cast) isExpr()    {}
func (Call) isExpr()    {}
func (Member) isExpr()  {}
func (Assign) isExpr()  {}

// Helper functions to construct expressions

// Int creates an integer literal.
func Int(v int64) Literal {
	return Literal{Kind: LitInt, Value: strconv.FormatInt(v, 10)}
}

// Bool creates a boolean literal.
func Bool(v bool) Literal {
	return Literal{Kind: LitBool, Value: strconv.FormatBool(v)}
}

// Str creates a string literal.
func Str(v string) Literal {
	return Literal{Kind: LitString, Value: strconv.Quote(v)}
}

// Nil creates a nil literal.
func Nil() Literal {
	return Literal{Kind: LitNil, Value: "nil"}
}

// Name creates an identifier.
func Name(name string) Ident {
	return Ident{Name: name}
}

// Bin creates a binary expression.
func Bin(op BinaryOp, x, y Expr) Binary {
	return Binary{Op: op, X: x, Y: y}
}

// And creates a logical and expression.
func And(x, y Expr) Binary {
	return Binary{Op: OpAnd, X: x, Y: y}
}

// Or creates a logical or expression.
func Or(x, y Expr) Binary {
	return Binary{Op: OpOr, X: x, Y: y}
}

// Not creates the negation !(x).
func Not(x Expr) Prefix {
	if _, ok := x.(Paren); ok {
		return Prefix{Op: OpNot, X: x}
	}
	return Prefix{Op: OpNot, X: Paren{X: x}}
}

// Unparen strips any number of enclosing parentheses.
func Unparen(x Expr) Expr {
	for {
		p, ok := x.(Paren)
		if !ok {
			return x
		}
		x = p.X
	}
}
