// Package directive reads //tpath: comments that tune or disable the rewrite
// of single functions or whole files.
//
//	//tpath:skip              leave the function unchanged
//	//tpath:bound=3           unroll the function's loops three times
//	//tpath:skip,bound=1      several settings separated by commas
//
// A directive placed before the package clause applies to every function of
// the file; one in a function's doc comment, or on the line right above the
// declaration, applies to that function only.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

const prefix = "//tpath:"

// Directive holds the settings of one function.
type Directive struct {
	Skip bool
	// Bound overrides the loop bound when positive.
	Bound int
}

func (d Directive) merge(o Directive) Directive {
	if o.Skip {
		d.Skip = true
	}
	if o.Bound > 0 {
		d.Bound = o.Bound
	}
	return d
}

// Set is the collection of directives of one file.
type Set struct {
	file  Directive
	funcs map[*ast.FuncDecl]Directive
}

// Parse collects the directives of f. Malformed directives are reported and
// otherwise ignored.
func Parse(f *ast.File, fset *token.FileSet) (*Set, []error) {
	set := &Set{funcs: make(map[*ast.FuncDecl]Directive)}
	packageLine := fset.Position(f.Package).Line

	var errs []error
	for _, cg := range f.Comments {
		for _, comment := range cg.List {
			if !strings.HasPrefix(comment.Text, prefix) {
				continue
			}
			pos := fset.Position(comment.Slash)
			d, err := parseSettings(strings.TrimPrefix(comment.Text, prefix))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", pos, err))
				continue
			}

			if pos.Line < packageLine {
				set.file = set.file.merge(d)
				continue
			}
			if decl := attachedFunc(f, fset, cg, pos.Line); decl != nil {
				set.funcs[decl] = set.funcs[decl].merge(d)
			}
		}
	}
	return set, errs
}

// For returns the settings that apply to decl.
func (s *Set) For(decl *ast.FuncDecl) Directive {
	return s.file.merge(s.funcs[decl])
}

// parseSettings parses the comma separated list following the prefix.
func parseSettings(text string) (Directive, error) {
	var d Directive
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		key, value, hasValue := strings.Cut(field, "=")
		switch key {
		case "skip":
			if hasValue {
				return d, fmt.Errorf("skip takes no value")
			}
			d.Skip = true
		case "bound":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return d, fmt.Errorf("invalid bound %q", value)
			}
			d.Bound = n
		case "":
		default:
			return d, fmt.Errorf("unknown directive %q", key)
		}
	}
	return d, nil
}

// attachedFunc finds the function whose doc comment is cg, or which starts
// on the line after line.
func attachedFunc(f *ast.File, fset *token.FileSet, cg *ast.CommentGroup, line int) *ast.FuncDecl {
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fd.Doc == cg {
			return fd
		}
		funcLine := fset.Position(fd.Pos()).Line
		if funcLine == line+1 {
			return fd
		}
		if funcLine > line {
			return nil
		}
	}
	return nil
}
