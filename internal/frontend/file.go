package frontend

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// File is a parsed Go source file.
type File struct {
	Fset *token.FileSet
	AST  *ast.File
}

// ParseFile parses src, keeping comments so that directives can be read.
// When src is nil the file is read from disk.
func ParseFile(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	var source any
	if src != nil {
		source = src
	}
	f, err := parser.ParseFile(fset, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}
	return &File{Fset: fset, AST: f}, nil
}

// Funcs returns the function declarations that have a body, in source
// order.
func (f *File) Funcs() []*ast.FuncDecl {
	var funcs []*ast.FuncDecl
	for _, decl := range f.AST.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Body != nil {
			funcs = append(funcs, fd)
		}
	}
	return funcs
}

// Replace swaps the bodies of the given declarations. Comments inside a
// replaced body are dropped since they no longer belong to any statement.
func (f *File) Replace(bodies map[*ast.FuncDecl]*ast.BlockStmt) {
	if len(bodies) == 0 {
		return
	}

	var dropped []*ast.BlockStmt
	astutil.Apply(f.AST, func(c *astutil.Cursor) bool {
		fd, ok := c.Node().(*ast.FuncDecl)
		if !ok {
			return true
		}
		body, ok := bodies[fd]
		if !ok {
			return false
		}
		dropped = append(dropped, fd.Body)
		replaced := *fd
		replaced.Body = body
		c.Replace(&replaced)
		return false
	}, nil)

	comments := f.AST.Comments[:0]
	for _, cg := range f.AST.Comments {
		if !within(cg, dropped) {
			comments = append(comments, cg)
		}
	}
	f.AST.Comments = comments
}

func within(n ast.Node, blocks []*ast.BlockStmt) bool {
	for _, b := range blocks {
		if n.Pos() >= b.Lbrace && n.End() <= b.Rbrace {
			return true
		}
	}
	return false
}

// Format prints the file with gofmt layout.
func (f *File) Format() ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, f.Fset, f.AST); err != nil {
		return nil, fmt.Errorf("error formatting file: %w", err)
	}
	return buf.Bytes(), nil
}
