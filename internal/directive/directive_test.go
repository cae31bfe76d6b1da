package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*Set, []error, map[string]*ast.FuncDecl) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)

	funcs := make(map[string]*ast.FuncDecl)
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok {
			funcs[fd.Name.Name] = fd
		}
	}
	set, errs := Parse(f, fset)
	return set, errs, funcs
}

func TestParse(t *testing.T) {
	t.Parallel()
	src := `package p

// skipped does not need paths.
//
//tpath:skip
func skipped() {}

//tpath:bound=4
func bounded() {}

func plain() {
	//tpath:skip
}

//tpath:skip, bound=1
func both() {}
`
	set, errs, funcs := parse(t, src)
	require.Empty(t, errs)

	assert.Equal(t, Directive{Skip: true}, set.For(funcs["skipped"]))
	assert.Equal(t, Directive{Bound: 4}, set.For(funcs["bounded"]))
	assert.Equal(t, Directive{}, set.For(funcs["plain"]))
	assert.Equal(t, Directive{Skip: true, Bound: 1}, set.For(funcs["both"]))
}

func TestFileDirective(t *testing.T) {
	t.Parallel()
	src := `//tpath:bound=3

package p

func a() {}

//tpath:bound=5
func b() {}
`
	set, errs, funcs := parse(t, src)
	require.Empty(t, errs)
	assert.Equal(t, Directive{Bound: 3}, set.For(funcs["a"]))
	assert.Equal(t, Directive{Bound: 5}, set.For(funcs["b"]))
}

func TestMalformedDirectives(t *testing.T) {
	t.Parallel()
	src := `package p

//tpath:bound=0
func a() {}

//tpath:skip=yes
func b() {}

//tpath:frobnicate
func c() {}
`
	set, errs, funcs := parse(t, src)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "test.go:3:1")
	assert.Contains(t, errs[0].Error(), `invalid bound "0"`)
	assert.Contains(t, errs[2].Error(), `unknown directive "frobnicate"`)

	for _, fd := range funcs {
		assert.Equal(t, Directive{}, set.For(fd))
	}
}
