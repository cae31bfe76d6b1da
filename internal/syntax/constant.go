package syntax

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"
	"strconv"
	"strings"
)

var errNotConstant = errors.New("not a constant expression")

// Constant evaluates a closed expression with exact constant arithmetic.
// It fails on identifiers, calls, division by zero and operands of
// mismatched kinds.
func Constant(x Expr) (constant.Value, error) {
	switch x := x.(type) {
	case Literal:
		return literalValue(x)
	case Paren:
		return Constant(x.X)
	case Prefix:
		v, err := Constant(x.X)
		if err != nil {
			return nil, err
		}
		return unaryValue(x.Op, v)
	case Binary:
		l, err := Constant(x.X)
		if err != nil {
			return nil, err
		}
		r, err := Constant(x.Y)
		if err != nil {
			return nil, err
		}
		return binaryValue(x.Op, l, r)
	default:
		return nil, fmt.Errorf("%w: %s", errNotConstant, KindOf(x))
	}
}

func literalValue(l Literal) (constant.Value, error) {
	var tok token.Token
	switch l.Kind {
	case LitInt:
		tok = token.INT
	case LitFloat:
		tok = token.FLOAT
	case LitString:
		tok = token.STRING
	case LitChar:
		tok = token.CHAR
	case LitBool:
		b, err := strconv.ParseBool(l.Value)
		if err != nil {
			return nil, err
		}
		return constant.MakeBool(b), nil
	default:
		return nil, fmt.Errorf("%w: %s literal", errNotConstant, l.Kind)
	}

	// folded results may carry a sign the Go scanner does not accept
	lit, neg := strings.CutPrefix(l.Value, "-")
	v := constant.MakeFromLiteral(lit, tok, 0)
	if v.Kind() == constant.Unknown {
		return nil, fmt.Errorf("%w: malformed literal %q", errNotConstant, l.Value)
	}
	if neg {
		v = constant.UnaryOp(token.SUB, v, 0)
	}
	return v, nil
}

func isNumeric(v constant.Value) bool {
	k := v.Kind()
	return k == constant.Int || k == constant.Float
}

func unaryValue(op UnaryOp, v constant.Value) (constant.Value, error) {
	switch {
	case op == OpNeg && isNumeric(v):
		return constant.UnaryOp(token.SUB, v, 0), nil
	case op == OpPlus && isNumeric(v):
		return v, nil
	case op == OpNot && v.Kind() == constant.Bool:
		return constant.MakeBool(!constant.BoolVal(v)), nil
	default:
		return nil, fmt.Errorf("%w: %s%s", errNotConstant, op, v.Kind())
	}
}

func binaryValue(op BinaryOp, l, r constant.Value) (constant.Value, error) {
	mismatch := fmt.Errorf("%w: %s %s %s", errNotConstant, l.Kind(), op, r.Kind())

	switch {
	case op.IsLogical():
		if l.Kind() != constant.Bool || r.Kind() != constant.Bool {
			return nil, mismatch
		}
		if op == OpAnd {
			return constant.MakeBool(constant.BoolVal(l) && constant.BoolVal(r)), nil
		}
		return constant.MakeBool(constant.BoolVal(l) || constant.BoolVal(r)), nil

	case op.IsComparison():
		if !(isNumeric(l) && isNumeric(r)) && l.Kind() != r.Kind() {
			return nil, mismatch
		}
		if l.Kind() == constant.Bool && op != OpEq && op != OpNeq {
			return nil, mismatch
		}
		return constant.MakeBool(constant.Compare(l, comparisonToken(op), r)), nil
	}

	if op == OpAdd && l.Kind() == constant.String && r.Kind() == constant.String {
		return constant.BinaryOp(l, token.ADD, r), nil
	}
	if !isNumeric(l) || !isNumeric(r) {
		return nil, mismatch
	}

	switch op {
	case OpAdd:
		return constant.BinaryOp(l, token.ADD, r), nil
	case OpSub:
		return constant.BinaryOp(l, token.SUB, r), nil
	case OpMul:
		return constant.BinaryOp(l, token.MUL, r), nil
	case OpDiv:
		if constant.Sign(r) == 0 {
			return nil, fmt.Errorf("%w: division by zero", errNotConstant)
		}
		if l.Kind() == constant.Int && r.Kind() == constant.Int {
			return constant.BinaryOp(l, token.QUO_ASSIGN, r), nil
		}
		return constant.BinaryOp(l, token.QUO, r), nil
	case OpMod:
		if l.Kind() != constant.Int || r.Kind() != constant.Int {
			return nil, mismatch
		}
		if constant.Sign(r) == 0 {
			return nil, fmt.Errorf("%w: division by zero", errNotConstant)
		}
		return constant.BinaryOp(l, token.REM, r), nil
	default:
		return nil, mismatch
	}
}

func comparisonToken(op BinaryOp) token.Token {
	switch op {
	case OpEq:
		return token.EQL
	case OpNeq:
		return token.NEQ
	case OpLt:
		return token.LSS
	case OpLte:
		return token.LEQ
	case OpGt:
		return token.GTR
	default:
		return token.GEQ
	}
}

// FromConstant converts a constant value back into a literal.
func FromConstant(v constant.Value) (Literal, bool) {
	switch v.Kind() {
	case constant.Bool:
		return Bool(constant.BoolVal(v)), true
	case constant.String:
		return Str(constant.StringVal(v)), true
	case constant.Int:
		return Literal{Kind: LitInt, Value: v.ExactString()}, true
	case constant.Float:
		f, _ := constant.Float64Val(v)
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return Literal{Kind: LitFloat, Value: s}, true
	default:
		return Literal{}, false
	}
}
