package frontend

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/gnolang/tpath/internal/syntax"
)

var binaryTokens = func() map[syntax.BinaryOp]token.Token {
	m := make(map[syntax.BinaryOp]token.Token, len(binaryOps))
	for tok, op := range binaryOps {
		m[op] = tok
	}
	return m
}()

var assignTokens = func() map[syntax.AssignOp]token.Token {
	m := make(map[syntax.AssignOp]token.Token, len(assignOps))
	for tok, op := range assignOps {
		m[op] = tok
	}
	return m
}()

// Body renders a rewritten block as a Go function body.
func Body(b syntax.Block) (*ast.BlockStmt, error) {
	return printBlock(b)
}

func printBlock(b syntax.Block) (*ast.BlockStmt, error) {
	list := make([]ast.Stmt, 0, len(b.List))
	for _, s := range b.List {
		stmt, err := printStmt(s)
		if err != nil {
			return nil, err
		}
		list = append(list, stmt)
	}
	return &ast.BlockStmt{List: list}, nil
}

func printStmt(s syntax.Stmt) (ast.Stmt, error) {
	switch s := s.(type) {
	case syntax.Block:
		return printBlock(s)

	case syntax.If:
		cond, err := printExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := printBlock(syntax.AsBlock(s.Then))
		if err != nil {
			return nil, err
		}
		n := &ast.IfStmt{Cond: cond, Body: then}
		if s.Else != nil {
			if n.Else, err = printBlock(syntax.AsBlock(s.Else)); err != nil {
				return nil, err
			}
		}
		return n, nil

	case syntax.While:
		cond, err := printExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := printBlock(syntax.AsBlock(s.Body))
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Cond: cond, Body: body}, nil

	case syntax.For:
		return printFor(s)

	case syntax.Return:
		if s.Value == nil {
			return &ast.ReturnStmt{}, nil
		}
		v, err := printExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Results: []ast.Expr{v}}, nil

	case syntax.Throw:
		var args []ast.Expr
		if s.Value != nil {
			v, err := printExpr(s.Value)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return &ast.ExprStmt{X: &ast.CallExpr{Fun: ast.NewIdent("panic"), Args: args}}, nil

	case syntax.ExprStmt:
		return printExprStmt(s.X)

	case syntax.LocalDecl:
		return printDecl(s)

	default:
		return nil, syntax.Unsupported(s, "statement")
	}
}

func printFor(s syntax.For) (ast.Stmt, error) {
	n := &ast.ForStmt{}
	var err error
	if s.Init != nil {
		if n.Init, err = printStmt(s.Init); err != nil {
			return nil, err
		}
	}
	if s.Cond != nil {
		if n.Cond, err = printExpr(s.Cond); err != nil {
			return nil, err
		}
	}
	switch len(s.Post) {
	case 0:
	case 1:
		if n.Post, err = printExprStmt(s.Post[0]); err != nil {
			return nil, err
		}
	default:
		return nil, syntax.Unsupported(s, "more than one post statement")
	}
	if n.Body, err = printBlock(syntax.AsBlock(s.Body)); err != nil {
		return nil, err
	}
	return n, nil
}

func printExprStmt(x syntax.Expr) (ast.Stmt, error) {
	switch x := x.(type) {
	case syntax.Assign:
		v, err := printExpr(x.Value)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(x.Name)},
			Tok: assignTokens[x.Op],
			Rhs: []ast.Expr{v},
		}, nil
	case syntax.Postfix:
		return printIncDec(x.Op, x.X)
	case syntax.Prefix:
		if x.Op == syntax.OpInc || x.Op == syntax.OpDec {
			return printIncDec(x.Op, x.X)
		}
	}
	v, err := printExpr(x)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: v}, nil
}

func printIncDec(op syntax.UnaryOp, operand syntax.Expr) (ast.Stmt, error) {
	x, err := printExpr(operand)
	if err != nil {
		return nil, err
	}
	tok := token.INC
	if op == syntax.OpDec {
		tok = token.DEC
	}
	return &ast.IncDecStmt{X: x, Tok: tok}, nil
}

func printDecl(s syntax.LocalDecl) (ast.Stmt, error) {
	var value ast.Expr
	if s.Value != nil {
		v, err := printExpr(s.Value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if s.Type == "" {
		if value == nil {
			return nil, syntax.Unsupported(s, "declaration without type or value")
		}
		return &ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(s.Name)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{value},
		}, nil
	}

	typ, err := parser.ParseExpr(s.Type)
	if err != nil {
		return nil, err
	}
	spec := &ast.ValueSpec{Names: []*ast.Ident{ast.NewIdent(s.Name)}, Type: typ}
	if value != nil {
		spec.Values = []ast.Expr{value}
	}
	return &ast.DeclStmt{Decl: &ast.GenDecl{Tok: token.VAR, Specs: []ast.Spec{spec}}}, nil
}

// operand parenthesizes x when it binds looser than prec.
func operand(x syntax.Expr, prec int) (ast.Expr, error) {
	e, err := printExpr(x)
	if err != nil {
		return nil, err
	}
	if syntax.Precedence(x) < prec {
		if _, ok := e.(*ast.ParenExpr); !ok {
			return &ast.ParenExpr{X: e}, nil
		}
	}
	return e, nil
}

func printExpr(x syntax.Expr) (ast.Expr, error) {
	switch x := x.(type) {
	case syntax.Literal:
		return printLiteral(x)

	case syntax.Ident:
		return ast.NewIdent(x.Name), nil

	case syntax.Binary:
		p := x.Op.Precedence()
		l, err := operand(x.X, p)
		if err != nil {
			return nil, err
		}
		r, err := operand(x.Y, p+1)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{X: l, Op: binaryTokens[x.Op], Y: r}, nil

	case syntax.Prefix:
		var tok token.Token
		switch x.Op {
		case syntax.OpNot:
			tok = token.NOT
		case syntax.OpNeg:
			tok = token.SUB
		case syntax.OpPlus:
			tok = token.ADD
		default:
			return nil, syntax.Unsupported(x, "in an expression")
		}
		// nested operators and signed literals are grouped: -(-a), -(-1)
		inner, err := operand(x.X, syntax.Precedence(syntax.Ident{}))
		if err != nil {
			return nil, err
		}
		if lit, ok := x.X.(syntax.Literal); ok && strings.HasPrefix(lit.Value, "-") {
			inner = &ast.ParenExpr{X: inner}
		}
		return &ast.UnaryExpr{Op: tok, X: inner}, nil

	case syntax.Paren:
		inner, err := printExpr(x.X)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{X: inner}, nil

	case syntax.Cast:
		typ, err := parser.ParseExpr(x.Type)
		if err != nil {
			return nil, err
		}
		inner, err := printExpr(x.X)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Fun: typ, Args: []ast.Expr{inner}}, nil

	case syntax.Call:
		fun, err := printExpr(x.Fun)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, len(x.Args))
		for i, arg := range x.Args {
			if args[i], err = printExpr(arg); err != nil {
				return nil, err
			}
		}
		return &ast.CallExpr{Fun: fun, Args: args}, nil

	case syntax.Member:
		inner, err := printExpr(x.X)
		if err != nil {
			return nil, err
		}
		return &ast.SelectorExpr{X: inner, Sel: ast.NewIdent(x.Sel)}, nil

	default:
		return nil, syntax.Unsupported(x, "in an expression")
	}
}

func printLiteral(l syntax.Literal) (ast.Expr, error) {
	var kind token.Token
	switch l.Kind {
	case syntax.LitBool, syntax.LitNil:
		return ast.NewIdent(l.Value), nil
	case syntax.LitInt:
		kind = token.INT
	case syntax.LitFloat:
		kind = token.FLOAT
	case syntax.LitString:
		kind = token.STRING
	case syntax.LitChar:
		kind = token.CHAR
	default:
		return nil, syntax.Unsupported(l, "literal")
	}
	if v, ok := strings.CutPrefix(l.Value, "-"); ok {
		return &ast.UnaryExpr{Op: token.SUB, X: &ast.BasicLit{Kind: kind, Value: v}}, nil
	}
	return &ast.BasicLit{Kind: kind, Value: l.Value}, nil
}
