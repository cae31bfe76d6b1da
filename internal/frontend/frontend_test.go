package frontend

import (
	"errors"
	"go/ast"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tpath/internal/syntax"
)

func parseFunc(t *testing.T, src string) (*File, *ast.FuncDecl) {
	t.Helper()
	f, err := ParseFile("test.go", []byte("package p\n\n"+src))
	require.NoError(t, err)
	funcs := f.Funcs()
	require.Len(t, funcs, 1)
	return f, funcs[0]
}

func TestConvert(t *testing.T) {
	t.Parallel()
	a, b, i, n := syntax.Name("a"), syntax.Name("b"), syntax.Name("i"), syntax.Name("n")

	tests := []struct {
		name string
		src  string
		want []syntax.Stmt
	}{
		{
			name: "branch and return",
			src: `func f(a, b int) int {
	if a > 0 && b > 0 {
		return 1
	} else {
		return 0
	}
}`,
			want: []syntax.Stmt{syntax.NewIf(syntax.And(syntax.Bin(syntax.OpGt, a, syntax.Int(0)), syntax.Bin(syntax.OpGt, b, syntax.Int(0))),
				syntax.NewBlock(syntax.Return{Value: syntax.Int(1)}),
				syntax.NewBlock(syntax.Return{Value: syntax.Int(0)}))},
		},
		{
			name: "while loop",
			src: `func f(i, n int) {
	for i < n {
		i++
	}
}`,
			want: []syntax.Stmt{syntax.While{
				Cond: syntax.Bin(syntax.OpLt, i, n),
				Body: syntax.NewBlock(syntax.Expression(syntax.Postfix{Op: syntax.OpInc, X: i})),
			}},
		},
		{
			name: "counted loop",
			src: `func f(n int) {
	for j := 0; j < n; j += 2 {
	}
}`,
			want: []syntax.Stmt{syntax.For{
				Init: syntax.Declare("j", syntax.Int(0)),
				Cond: syntax.Bin(syntax.OpLt, syntax.Name("j"), n),
				Post: []syntax.Expr{syntax.Assign{Op: syntax.AssignAdd, Name: "j", Value: syntax.Int(2)}},
				Body: syntax.Block{List: []syntax.Stmt{}},
			}},
		},
		{
			name: "endless loop",
			src: `func f(n int) {
	for {
		n--
	}
}`,
			want: []syntax.Stmt{syntax.For{
				Body: syntax.NewBlock(syntax.Expression(syntax.Postfix{Op: syntax.OpDec, X: n})),
			}},
		},
		{
			name: "declarations",
			src: `func f(a int) {
	var x int
	var s, t string = "s", "t"
	y := -3
	x = a * y
}`,
			want: []syntax.Stmt{
				syntax.LocalDecl{Name: "x", Type: "int"},
				syntax.NewBlock(
					syntax.LocalDecl{Name: "s", Type: "string", Value: syntax.Str("s")},
					syntax.LocalDecl{Name: "t", Type: "string", Value: syntax.Str("t")},
				),
				syntax.Declare("y", syntax.Int(-3)),
				syntax.Set("x", syntax.Bin(syntax.OpMul, a, syntax.Name("y"))),
			},
		},
		{
			name: "panic conversion and call",
			src: `func f(a int) {
	if !(int64(a) >= 10) {
		panic("small")
	}
	fmt.Println(a)
}`,
			want: []syntax.Stmt{
				syntax.NewIf(syntax.Prefix{Op: syntax.OpNot, X: syntax.Paren{X: syntax.Bin(syntax.OpGte, syntax.Cast{Type: "int64", X: a}, syntax.Int(10))}},
					syntax.NewBlock(syntax.Throw{Value: syntax.Str("small")}), nil),
				syntax.Expression(syntax.Call{Fun: syntax.Member{X: syntax.Name("fmt"), Sel: "Println"}, Args: []syntax.Expr{a}}),
			},
		},
		{
			name: "if with init and else if",
			src: `func f(a int) int {
	if d := a - 1; d == 0 {
		return 0
	} else if d < 0 {
		return -1
	}
	return 1
}`,
			want: []syntax.Stmt{
				syntax.NewBlock(
					syntax.Declare("d", syntax.Bin(syntax.OpSub, a, syntax.Int(1))),
					syntax.NewIf(syntax.Bin(syntax.OpEq, syntax.Name("d"), syntax.Int(0)),
						syntax.NewBlock(syntax.Return{Value: syntax.Int(0)}),
						syntax.NewBlock(syntax.NewIf(syntax.Bin(syntax.OpLt, syntax.Name("d"), syntax.Int(0)),
							syntax.NewBlock(syntax.Return{Value: syntax.Int(-1)}), nil))),
				),
				syntax.Return{Value: syntax.Int(1)},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, decl := parseFunc(t, tt.src)
			fn, err := Convert(decl)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, fn.Body.List); diff != "" {
				t.Errorf("converted body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertSignature(t *testing.T) {
	t.Parallel()
	_, decl := parseFunc(t, `func (s *Store) Get(key string, _ int, a, b float64) (v int, err error) { return }`)

	fn, err := Convert(decl)
	require.NoError(t, err)
	assert.Equal(t, "Store.Get", fn.Name)
	assert.Equal(t, []syntax.Param{
		{Name: "key", Type: "string"},
		{Name: "a", Type: "float64"},
		{Name: "b", Type: "float64"},
	}, fn.Params)
	assert.Equal(t, []string{"int", "error"}, fn.Results)
}

func TestConvertUnsupported(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		kind string
	}{
		{"switch", "func f(a int) { switch a {} }", "SwitchStmt"},
		{"range", "func f(a []int) { for range a {} }", "RangeStmt"},
		{"tuple return", "func f(a int) (int, int) { return a, a }", "ReturnStmt"},
		{"bitwise operator", "func f(a int) int { return a & 1 }", "BinaryExpr"},
		{"index", "func f(a []int) int { return a[0] }", "IndexExpr"},
		{"tuple assign", "func f(a, b int) { a, b = b, a }", "AssignStmt"},
		{"defer", "func f() { defer g() }", "DeferStmt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, decl := parseFunc(t, tt.src)
			_, err := Convert(decl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, syntax.ErrUnsupported))

			var unsupported *syntax.UnsupportedError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, tt.kind, unsupported.Kind)
		})
	}
}

func TestConvertScopes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		src    string
		kind   string
		detail string
	}{
		{
			name: "branch shadows local",
			src: `func f(a int) int {
	x := a
	if a > 0 {
		x := 5
		x++
	}
	if x > 3 {
		return 1
	}
	return 0
}`,
			kind:   "AssignStmt",
			detail: "shadowed variable x",
		},
		{
			name:   "branch shadows parameter",
			src:    "func f(a int) int { if a > 0 { a := 1; return a }; return a }",
			kind:   "AssignStmt",
			detail: "shadowed variable a",
		},
		{
			name:   "var shadows parameter",
			src:    "func f(a int) int { for a < 3 { var a int; a++ }; return a }",
			kind:   "ValueSpec",
			detail: "shadowed variable a",
		},
		{
			name:   "if init shadows local",
			src:    "func f(a int) int { x := a; if x := 5; x > 3 { return 1 }; return x }",
			kind:   "AssignStmt",
			detail: "shadowed variable x",
		},
		{
			name:   "for init shadows parameter",
			src:    "func f(i int) int { for i := 0; i < 3; i++ {}; return i }",
			kind:   "AssignStmt",
			detail: "shadowed variable i",
		},
		{
			name:   "loop body shadows counter",
			src:    "func f(n int) { for i := 0; i < n; i++ { i := 2; n += i } }",
			kind:   "AssignStmt",
			detail: "shadowed variable i",
		},
		{
			name:   "else shadows if init",
			src:    "func f(a int) int { if d := a; d > 0 { return 1 } else { d := 0; return d } }",
			kind:   "AssignStmt",
			detail: "shadowed variable d",
		},
		{
			name:   "named result",
			src:    "func f(a int) (r int) { if a > 0 { r := 1; a = r }; return }",
			kind:   "AssignStmt",
			detail: "shadowed variable r",
		},
		{
			name:   "receiver",
			src:    "func (s *S) f(a int) int { if a > 0 { s := 1; return s }; return 0 }",
			kind:   "AssignStmt",
			detail: "shadowed variable s",
		},
		{
			name:   "bare block is spliced",
			src:    "func f(a int) int { { x := 1; a += x }; x := 2; return x }",
			kind:   "AssignStmt",
			detail: "redeclared variable x",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, decl := parseFunc(t, tt.src)
			_, err := Convert(decl)
			require.Error(t, err)

			var unsupported *syntax.UnsupportedError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, tt.kind, unsupported.Kind)
			assert.Equal(t, tt.detail, unsupported.Detail)
		})
	}
}

func TestConvertScopesAllowsReuse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"sibling branches", "func f(a int) int { if a > 0 { x := 1; a += x } else { x := 2; a -= x }; return a }"},
		{"sequential loops", "func f(n int) int { for i := 0; i < n; i++ {}; for i := 0; i < n; i++ {}; return n }"},
		{"after the branch", "func f(a int) int { if a > 0 { x := 1; a += x }; x := a; return x }"},
		{"if init after if init", "func f(a int) int { if d := a; d > 0 { return 1 }; if d := a + 1; d > 0 { return 2 }; return 0 }"},
		{"blank", "func f(a int) int { var _ = a; var _ = a; return a }"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, decl := parseFunc(t, tt.src)
			_, err := Convert(decl)
			assert.NoError(t, err)
		})
	}
}

func TestBody(t *testing.T) {
	t.Parallel()
	a, b := syntax.Name("a"), syntax.Name("b")
	body := syntax.NewBlock(
		syntax.LocalDecl{Name: "x", Type: "int"},
		syntax.Expression(syntax.Assign{Op: syntax.AssignAdd, Name: "x", Value: syntax.Bin(syntax.OpMul, syntax.Bin(syntax.OpAdd, a, b), syntax.Int(2))}),
		syntax.NewIf(syntax.Bin(syntax.OpGt, syntax.Prefix{Op: syntax.OpNeg, X: syntax.Int(-1)}, syntax.Bin(syntax.OpSub, a, syntax.Bin(syntax.OpSub, b, syntax.Int(1)))),
			syntax.NewBlock(syntax.Throw{Value: syntax.Str("boom")}),
			syntax.NewBlock(syntax.While{Cond: syntax.Bool(true), Body: syntax.NewBlock(syntax.Return{Value: syntax.Name("x")})})),
	)

	block, err := Body(body)
	require.NoError(t, err)

	f, err := ParseFile("test.go", []byte("package p\n\nfunc f(a, b int) int {}\n"))
	require.NoError(t, err)
	decl := f.Funcs()[0]
	f.Replace(map[*ast.FuncDecl]*ast.BlockStmt{decl: block})

	out, err := f.Format()
	require.NoError(t, err)
	assert.Contains(t, string(out), "var x int")
	assert.Contains(t, string(out), `panic("boom")`)
	assert.Contains(t, string(out), "for true {")

	// the printed source converts back to the same tree
	reparsed, err := ParseFile("test.go", out)
	require.NoError(t, err)
	fn, err := Convert(reparsed.Funcs()[0])
	require.NoError(t, err)

	want := body.List
	want[2] = syntax.NewIf(syntax.Bin(syntax.OpGt, syntax.Prefix{Op: syntax.OpNeg, X: syntax.Paren{X: syntax.Int(-1)}}, syntax.Bin(syntax.OpSub, a, syntax.Paren{X: syntax.Bin(syntax.OpSub, b, syntax.Int(1))})),
		syntax.NewBlock(syntax.Throw{Value: syntax.Str("boom")}),
		syntax.NewBlock(syntax.While{Cond: syntax.Bool(true), Body: syntax.NewBlock(syntax.Return{Value: syntax.Name("x")})}))
	want[1] = syntax.Expression(syntax.Assign{Op: syntax.AssignAdd, Name: "x", Value: syntax.Bin(syntax.OpMul, syntax.Paren{X: syntax.Bin(syntax.OpAdd, a, b)}, syntax.Int(2))})
	if diff := cmp.Diff(want, fn.Body.List); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceDropsInnerComments(t *testing.T) {
	t.Parallel()
	f, decl := parseFunc(t, `// f is documented.
func f(a int) int {
	// inner
	return a
}

// trailing comment
`)
	f.Replace(map[*ast.FuncDecl]*ast.BlockStmt{decl: {List: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("a")}}}}})

	out, err := f.Format()
	require.NoError(t, err)
	assert.Contains(t, string(out), "// f is documented.")
	assert.Contains(t, string(out), "// trailing comment")
	assert.NotContains(t, string(out), "// inner")
}
