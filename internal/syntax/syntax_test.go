package syntax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExprString(t *testing.T) {
	t.Parallel()
	a, b, c := Name("a"), Name("b"), Name("c")

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"literal", Int(42), "42"},
		{"negative literal", Int(-3), "-3"},
		{"left assoc", Bin(OpSub, Bin(OpSub, a, b), c), "a - b - c"},
		{"right grouping", Bin(OpSub, a, Bin(OpSub, b, c)), "a - (b - c)"},
		{"precedence", Bin(OpMul, Bin(OpAdd, a, b), c), "(a + b) * c"},
		{"no redundant parens", Bin(OpAdd, a, Bin(OpMul, b, c)), "a + b * c"},
		{"logical", Or(And(a, b), c), "a && b || c"},
		{"logical grouping", And(a, Or(b, c)), "a && (b || c)"},
		{"not", Not(Bin(OpGt, a, Int(0))), "!(a > 0)"},
		{"not keeps paren", Not(Paren{X: a}), "!(a)"},
		{"double negation", Prefix{Op: OpNeg, X: Prefix{Op: OpNeg, X: a}}, "-(-a)"},
		{"postfix", Postfix{Op: OpInc, X: a}, "a++"},
		{"cast", Cast{Type: "int64", X: Bin(OpAdd, a, Int(1))}, "int64(a + 1)"},
		{"call", Call{Fun: Member{X: Name("strings"), Sel: "Count"}, Args: []Expr{a, Str("x")}}, `strings.Count(a, "x")`},
		{"compound assign", Assign{Op: AssignAdd, Name: "s", Value: Bin(OpAdd, a, Int(1))}, "s += a + 1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestStmtString(t *testing.T) {
	t.Parallel()
	s := NewBlock(
		Declare("x", Name("a")),
		NewIf(Bin(OpGt, Name("x"), Int(0)),
			NewBlock(Return{Value: Int(1)}),
			NewBlock(Throw{Value: Call{Fun: Name("errorf")}})),
	)
	assert.Equal(t, "{ var x = a; if x > 0 { return 1 } else { throw errorf() } }", s.String())

	loop := For{
		Init: Declare("i", Int(0)),
		Cond: Bin(OpLt, Name("i"), Name("n")),
		Post: []Expr{Postfix{Op: OpInc, X: Name("i")}},
		Body: NewBlock(),
	}
	assert.Equal(t, "for var i = 0; i < n; i++ {}", loop.String())
}

func TestFlatten(t *testing.T) {
	t.Parallel()
	a := Expression(Call{Fun: Name("a")})
	b := Expression(Call{Fun: Name("b")})
	c := Expression(Call{Fun: Name("c")})

	got := Flatten([]Stmt{NewBlock(NewBlock(NewBlock(a), NewBlock(b))), c})
	assert.Equal(t, []Stmt{a, b, c}, got)

	// flattening is idempotent
	assert.Equal(t, got, Flatten(got))
}

func TestTerminalHelpers(t *testing.T) {
	t.Parallel()
	ret := Return{Value: Int(0)}
	call := Expression(Call{Fun: Name("f")})

	assert.True(t, IsTerminal(ret))
	assert.True(t, IsTerminal(Throw{Value: Nil()}))
	assert.False(t, IsTerminal(call))
	assert.True(t, EndsTerminal([]Stmt{call, ret}))
	assert.False(t, EndsTerminal([]Stmt{ret, call}))
	assert.True(t, ContainsTerminal([]Stmt{ret, call}))
	assert.False(t, EndsTerminal(nil))
}

func TestStatementsAndAsBlock(t *testing.T) {
	t.Parallel()
	ret := Return{}
	assert.Equal(t, []Stmt{ret}, Statements(ret))
	assert.Equal(t, []Stmt{ret}, Statements(NewBlock(ret)))
	assert.Nil(t, Statements(nil))
	assert.Equal(t, NewBlock(ret), AsBlock(ret))
	assert.Equal(t, Block{}, AsBlock(nil))
}

func TestInspect(t *testing.T) {
	t.Parallel()
	tree := NewBlock(
		While{Cond: Bool(true), Body: NewBlock(NewIf(Name("c"), NewBlock(Return{}), nil))},
		Return{},
	)

	var kinds []string
	Inspect(tree, func(s Stmt) bool {
		kinds = append(kinds, KindOf(s))
		return true
	})
	assert.Equal(t, []string{"Block", "While", "Block", "If", "Block", "Return", "Return"}, kinds)
}

func TestIsClosed(t *testing.T) {
	t.Parallel()
	assert.True(t, IsClosed(Bin(OpAdd, Int(1), Paren{X: Prefix{Op: OpNeg, X: Int(2)}})))
	assert.False(t, IsClosed(Bin(OpAdd, Int(1), Name("a"))))
	assert.False(t, IsClosed(Call{Fun: Name("f")}))
}

func TestErrors(t *testing.T) {
	t.Parallel()
	err := Unsupported(While{}, "loop survived unrolling")
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.EqualError(t, err, "unsupported construct: While (loop survived unrolling)")

	var unsupported *UnsupportedError
	assert.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "While", unsupported.Kind)

	lookup := &LookupError{Name: "x"}
	assert.True(t, errors.Is(lookup, ErrUnknownIdentifier))
	assert.EqualError(t, lookup, `unknown identifier: "x"`)
}
