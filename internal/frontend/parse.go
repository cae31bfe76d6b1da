// Package frontend converts Go function declarations into the statement tree
// the rewrite engine works on, and renders rewritten trees back into Go
// source.
package frontend

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/gnolang/tpath/internal/syntax"
)

// basic types whose single-argument call is a conversion
var conversions = map[string]struct{}{
	"bool": {}, "string": {}, "byte": {}, "rune": {},
	"int": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
	"uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {}, "uintptr": {},
	"float32": {}, "float64": {},
}

func unsupported(node ast.Node, detail string) error {
	kind := strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.")
	return &syntax.UnsupportedError{Kind: kind, Detail: detail}
}

// Convert builds the procedure of a function declaration.
func Convert(decl *ast.FuncDecl) (syntax.Func, error) {
	if decl.Body == nil {
		return syntax.Func{}, unsupported(decl, "function without body")
	}
	fn := syntax.Func{Name: QualifiedName(decl)}

	c := &converter{}
	c.open()
	if decl.Recv != nil {
		for _, field := range decl.Recv.List {
			for _, name := range field.Names {
				c.bind(name.Name)
			}
		}
	}
	for _, field := range decl.Type.Params.List {
		typ := types.ExprString(field.Type)
		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			c.bind(name.Name)
			fn.Params = append(fn.Params, syntax.Param{Name: name.Name, Type: typ})
		}
	}
	if results := decl.Type.Results; results != nil {
		for _, field := range results.List {
			typ := types.ExprString(field.Type)
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				fn.Results = append(fn.Results, typ)
			}
			for _, name := range field.Names {
				c.bind(name.Name)
			}
		}
	}

	body, err := c.list(decl.Body)
	if err != nil {
		return syntax.Func{}, fmt.Errorf("%s: %w", fn.Name, err)
	}
	fn.Body = body
	return fn, nil
}

// QualifiedName qualifies methods with their receiver type, e.g.
// "T.Method".
func QualifiedName(decl *ast.FuncDecl) string {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return decl.Name.Name
	}
	recv := decl.Recv.List[0].Type
	if star, ok := recv.(*ast.StarExpr); ok {
		recv = star.X
	}
	return types.ExprString(recv) + "." + decl.Name.Name
}

// converter tracks the locals declared at each open scope. The statements
// following a branch end up inside its arms, so a local must never shadow
// one of an enclosing scope.
type converter struct {
	scopes []map[string]struct{}
}

func (c *converter) open() {
	c.scopes = append(c.scopes, make(map[string]struct{}))
}

func (c *converter) close() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *converter) bind(name string) {
	c.scopes[len(c.scopes)-1][name] = struct{}{}
}

// declare binds name in the innermost scope, failing when any open scope
// already holds it.
func (c *converter) declare(node ast.Node, name string) error {
	if name == "_" {
		return nil
	}
	last := len(c.scopes) - 1
	for i := last; i >= 0; i-- {
		if _, ok := c.scopes[i][name]; !ok {
			continue
		}
		if i == last {
			return unsupported(node, "redeclared variable "+name)
		}
		return unsupported(node, "shadowed variable "+name)
	}
	c.bind(name)
	return nil
}

// block converts a branch or loop body in a scope of its own.
func (c *converter) block(block *ast.BlockStmt) (syntax.Block, error) {
	c.open()
	defer c.close()
	return c.list(block)
}

func (c *converter) list(block *ast.BlockStmt) (syntax.Block, error) {
	stmts := make([]syntax.Stmt, 0, len(block.List))
	for _, stmt := range block.List {
		s, err := c.convertStmt(stmt)
		if err != nil {
			return syntax.Block{}, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return syntax.Block{List: stmts}, nil
}

func (c *converter) convertStmt(stmt ast.Stmt) (syntax.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		// spliced into the enclosing block, so it shares its scope
		return c.list(s)
	case *ast.IfStmt:
		return c.convertIf(s)
	case *ast.ForStmt:
		return c.convertFor(s)
	case *ast.ReturnStmt:
		return convertReturn(s)
	case *ast.AssignStmt:
		return c.convertAssign(s)
	case *ast.IncDecStmt:
		x, err := convertExpr(s.X)
		if err != nil {
			return nil, err
		}
		op := syntax.OpInc
		if s.Tok == token.DEC {
			op = syntax.OpDec
		}
		return syntax.Expression(syntax.Postfix{Op: op, X: x}), nil
	case *ast.DeclStmt:
		return c.convertDecl(s)
	case *ast.ExprStmt:
		return convertExprStmt(s)
	case *ast.EmptyStmt:
		return nil, nil
	default:
		return nil, unsupported(stmt, "statement")
	}
}

// convertIf hoists an init statement in front of the branch.
func (c *converter) convertIf(stmt *ast.IfStmt) (syntax.Stmt, error) {
	c.open()
	defer c.close()

	var init syntax.Stmt
	if stmt.Init != nil {
		var err error
		if init, err = c.convertSimple(stmt.Init); err != nil {
			return nil, err
		}
	}
	cond, err := convertExpr(stmt.Cond)
	if err != nil {
		return nil, err
	}
	then, err := c.block(stmt.Body)
	if err != nil {
		return nil, err
	}
	n := syntax.If{Cond: cond, Then: then}
	switch els := stmt.Else.(type) {
	case nil:
	case *ast.BlockStmt:
		if n.Else, err = c.block(els); err != nil {
			return nil, err
		}
	default:
		s, err := c.convertStmt(els)
		if err != nil {
			return nil, err
		}
		n.Else = syntax.AsBlock(s)
	}

	if init == nil {
		return n, nil
	}
	return syntax.NewBlock(init, n), nil
}

func (c *converter) convertFor(stmt *ast.ForStmt) (syntax.Stmt, error) {
	c.open()
	defer c.close()

	var (
		init syntax.Stmt
		cond syntax.Expr
		err  error
	)
	if stmt.Init != nil {
		if init, err = c.convertSimple(stmt.Init); err != nil {
			return nil, err
		}
	}
	if stmt.Cond != nil {
		if cond, err = convertExpr(stmt.Cond); err != nil {
			return nil, err
		}
	}
	body, err := c.block(stmt.Body)
	if err != nil {
		return nil, err
	}
	if stmt.Init == nil && stmt.Post == nil && cond != nil {
		return syntax.While{Cond: cond, Body: body}, nil
	}

	loop := syntax.For{Init: init, Cond: cond, Body: body}
	if stmt.Post != nil {
		post, err := c.convertSimple(stmt.Post)
		if err != nil {
			return nil, err
		}
		es, ok := post.(syntax.ExprStmt)
		if !ok {
			return nil, unsupported(stmt.Post, "for loop post statement")
		}
		loop.Post = []syntax.Expr{es.X}
	}
	return loop, nil
}

// convertSimple converts the init and post statements of if and for.
func (c *converter) convertSimple(stmt ast.Stmt) (syntax.Stmt, error) {
	switch stmt.(type) {
	case *ast.AssignStmt, *ast.IncDecStmt, *ast.ExprStmt:
		return c.convertStmt(stmt)
	default:
		return nil, unsupported(stmt, "init or post statement")
	}
}

func convertReturn(stmt *ast.ReturnStmt) (syntax.Stmt, error) {
	switch len(stmt.Results) {
	case 0:
		return syntax.Return{}, nil
	case 1:
		x, err := convertExpr(stmt.Results[0])
		if err != nil {
			return nil, err
		}
		return syntax.Return{Value: x}, nil
	default:
		return nil, unsupported(stmt, "more than one result")
	}
}

var assignOps = map[token.Token]syntax.AssignOp{
	token.ASSIGN:     syntax.AssignSet,
	token.ADD_ASSIGN: syntax.AssignAdd,
	token.SUB_ASSIGN: syntax.AssignSub,
	token.MUL_ASSIGN: syntax.AssignMul,
	token.QUO_ASSIGN: syntax.AssignDiv,
	token.REM_ASSIGN: syntax.AssignMod,
}

func (c *converter) convertAssign(stmt *ast.AssignStmt) (syntax.Stmt, error) {
	if len(stmt.Lhs) != 1 || len(stmt.Rhs) != 1 {
		return nil, unsupported(stmt, "multiple assignment")
	}
	ident, ok := stmt.Lhs[0].(*ast.Ident)
	if !ok {
		return nil, unsupported(stmt.Lhs[0], "assignment target")
	}
	value, err := convertExpr(stmt.Rhs[0])
	if err != nil {
		return nil, err
	}

	if stmt.Tok == token.DEFINE {
		if err := c.declare(stmt, ident.Name); err != nil {
			return nil, err
		}
		return syntax.Declare(ident.Name, value), nil
	}
	op, ok := assignOps[stmt.Tok]
	if !ok {
		return nil, unsupported(stmt, stmt.Tok.String())
	}
	return syntax.Expression(syntax.Assign{Op: op, Name: ident.Name, Value: value}), nil
}

// convertDecl splits a var declaration into one local per name.
func (c *converter) convertDecl(stmt *ast.DeclStmt) (syntax.Stmt, error) {
	gen, ok := stmt.Decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR {
		return nil, unsupported(stmt, "declaration")
	}

	var decls []syntax.Stmt
	for _, spec := range gen.Specs {
		vs := spec.(*ast.ValueSpec)
		if len(vs.Values) != 0 && len(vs.Values) != len(vs.Names) {
			return nil, unsupported(vs, "multiple value declaration")
		}
		var typ string
		if vs.Type != nil {
			typ = types.ExprString(vs.Type)
		}
		for i, name := range vs.Names {
			decl := syntax.LocalDecl{Name: name.Name, Type: typ}
			if len(vs.Values) > 0 {
				value, err := convertExpr(vs.Values[i])
				if err != nil {
					return nil, err
				}
				decl.Value = value
			}
			if err := c.declare(vs, name.Name); err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}
	}
	if len(decls) == 1 {
		return decls[0], nil
	}
	return syntax.Block{List: decls}, nil
}

// convertExprStmt turns panic(v) into a throw.
func convertExprStmt(stmt *ast.ExprStmt) (syntax.Stmt, error) {
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		return nil, unsupported(stmt.X, "expression statement")
	}
	if id, ok := call.Fun.(*ast.Ident); ok && id.Name == "panic" && len(call.Args) == 1 {
		v, err := convertExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		return syntax.Throw{Value: v}, nil
	}
	x, err := convertExpr(call)
	if err != nil {
		return nil, err
	}
	return syntax.Expression(x), nil
}

var binaryOps = map[token.Token]syntax.BinaryOp{
	token.ADD:  syntax.OpAdd,
	token.SUB:  syntax.OpSub,
	token.MUL:  syntax.OpMul,
	token.QUO:  syntax.OpDiv,
	token.REM:  syntax.OpMod,
	token.EQL:  syntax.OpEq,
	token.NEQ:  syntax.OpNeq,
	token.LSS:  syntax.OpLt,
	token.LEQ:  syntax.OpLte,
	token.GTR:  syntax.OpGt,
	token.GEQ:  syntax.OpGte,
	token.LAND: syntax.OpAnd,
	token.LOR:  syntax.OpOr,
}

var literalKinds = map[token.Token]syntax.LitKind{
	token.INT:    syntax.LitInt,
	token.FLOAT:  syntax.LitFloat,
	token.STRING: syntax.LitString,
	token.CHAR:   syntax.LitChar,
}

func convertExpr(expr ast.Expr) (syntax.Expr, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		kind, ok := literalKinds[e.Kind]
		if !ok {
			return nil, unsupported(e, e.Kind.String()+" literal")
		}
		return syntax.Literal{Kind: kind, Value: e.Value}, nil

	case *ast.Ident:
		switch e.Name {
		case "true":
			return syntax.Bool(true), nil
		case "false":
			return syntax.Bool(false), nil
		case "nil":
			return syntax.Nil(), nil
		default:
			return syntax.Name(e.Name), nil
		}

	case *ast.BinaryExpr:
		op, ok := binaryOps[e.Op]
		if !ok {
			return nil, unsupported(e, "operator "+e.Op.String())
		}
		x, err := convertExpr(e.X)
		if err != nil {
			return nil, err
		}
		y, err := convertExpr(e.Y)
		if err != nil {
			return nil, err
		}
		return syntax.Bin(op, x, y), nil

	case *ast.UnaryExpr:
		return convertUnary(e)

	case *ast.ParenExpr:
		x, err := convertExpr(e.X)
		if err != nil {
			return nil, err
		}
		return syntax.Paren{X: x}, nil

	case *ast.CallExpr:
		return convertCall(e)

	case *ast.SelectorExpr:
		x, err := convertExpr(e.X)
		if err != nil {
			return nil, err
		}
		return syntax.Member{X: x, Sel: e.Sel.Name}, nil

	default:
		return nil, unsupported(expr, "expression")
	}
}

// convertUnary folds the sign of a numeric literal into the literal.
func convertUnary(e *ast.UnaryExpr) (syntax.Expr, error) {
	if lit, ok := e.X.(*ast.BasicLit); ok && e.Op == token.SUB && (lit.Kind == token.INT || lit.Kind == token.FLOAT) {
		return syntax.Literal{Kind: literalKinds[lit.Kind], Value: "-" + lit.Value}, nil
	}

	var op syntax.UnaryOp
	switch e.Op {
	case token.NOT:
		op = syntax.OpNot
	case token.SUB:
		op = syntax.OpNeg
	case token.ADD:
		op = syntax.OpPlus
	default:
		return nil, unsupported(e, "operator "+e.Op.String())
	}
	x, err := convertExpr(e.X)
	if err != nil {
		return nil, err
	}
	return syntax.Prefix{Op: op, X: x}, nil
}

func convertCall(e *ast.CallExpr) (syntax.Expr, error) {
	if e.Ellipsis.IsValid() {
		return nil, unsupported(e, "variadic call")
	}
	args := make([]syntax.Expr, len(e.Args))
	for i, arg := range e.Args {
		x, err := convertExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}

	switch fun := e.Fun.(type) {
	case *ast.Ident:
		if _, ok := conversions[fun.Name]; ok && len(args) == 1 {
			return syntax.Cast{Type: fun.Name, X: args[0]}, nil
		}
		return syntax.Call{Fun: syntax.Name(fun.Name), Args: args}, nil
	case *ast.SelectorExpr:
		callee, err := convertExpr(fun)
		if err != nil {
			return nil, err
		}
		return syntax.Call{Fun: callee, Args: args}, nil
	default:
		return nil, unsupported(e.Fun, "callee")
	}
}
