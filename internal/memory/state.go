// Package memory implements the symbolic memory state of one execution
// path: a mapping from every variable in scope to an expression over the
// procedure's parameters only.
package memory

import (
	"sort"
	"strings"

	"github.com/gnolang/tpath/internal/syntax"
)

// State maps variable names to their symbolic values. A State belongs to a
// single path; branching paths work on forks.
type State struct {
	vars map[string]syntax.Expr
	fold bool
}

// Option configures a State.
type Option func(*State)

// WithFolding toggles constant folding of resolved values. Folding is on by
// default.
func WithFolding(on bool) Option {
	return func(s *State) {
		s.fold = on
	}
}

// New creates the initial state of a procedure: every parameter maps to
// itself.
func New(params []syntax.Param, opts ...Option) *State {
	s := &State{
		vars: make(map[string]syntax.Expr, len(params)),
		fold: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range params {
		s.vars[p.Name] = syntax.Name(p.Name)
	}
	return s
}

// Declare records a new local. A nil init declares the zero value of typ.
func (s *State) Declare(name, typ string, init syntax.Expr) error {
	if init == nil {
		zero, err := ZeroValue(typ)
		if err != nil {
			return err
		}
		init = zero
	}
	resolved, err := s.substitute(init)
	if err != nil {
		return err
	}
	s.vars[name] = s.simplify(resolved)
	return nil
}

// Update overwrites the value of an existing variable with x resolved
// against the current state. Increments and decrements of name resolve to
// its current value plus or minus one.
func (s *State) Update(name string, x syntax.Expr) error {
	if _, ok := s.vars[name]; !ok {
		return &syntax.LookupError{Name: name}
	}
	resolved, err := s.substitute(x)
	if err != nil {
		return err
	}
	s.vars[name] = s.simplify(resolved)
	return nil
}

// Lookup returns the current value of name.
func (s *State) Lookup(name string) (syntax.Expr, error) {
	v, ok := s.vars[name]
	if !ok {
		return nil, &syntax.LookupError{Name: name}
	}
	return v, nil
}

// Fork returns an independent copy of s.
func (s *State) Fork() *State {
	vars := make(map[string]syntax.Expr, len(s.vars))
	for k, v := range s.vars {
		vars[k] = v
	}
	return &State{vars: vars, fold: s.fold}
}

// Names returns the variables in scope in sorted order.
func (s *State) Names() []string {
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range s.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(s.vars[name].String())
	}
	b.WriteByte('}')
	return b.String()
}

// substitute replaces every identifier of x by its current value.
// Parentheses are dropped; the tree keeps the grouping.
func (s *State) substitute(x syntax.Expr) (syntax.Expr, error) {
	switch x := x.(type) {
	case syntax.Literal:
		return x, nil

	case syntax.Ident:
		return s.Lookup(x.Name)

	case syntax.Paren:
		return s.substitute(x.X)

	case syntax.Binary:
		l, err := s.substitute(x.X)
		if err != nil {
			return nil, err
		}
		r, err := s.substitute(x.Y)
		if err != nil {
			return nil, err
		}
		return syntax.Bin(x.Op, l, r), nil

	case syntax.Prefix:
		switch x.Op {
		case syntax.OpInc, syntax.OpDec:
			return s.step(x, x.Op, x.X)
		case syntax.OpNeg, syntax.OpPlus, syntax.OpNot:
			if lit, ok := syntax.Unparen(x.X).(syntax.Literal); ok {
				return syntax.Prefix{Op: x.Op, X: lit}, nil
			}
		}
		return nil, syntax.Unsupported(x, "operand of a prefix operator in an assigned value")

	case syntax.Postfix:
		return s.step(x, x.Op, x.X)

	default:
		return nil, syntax.Unsupported(x, "assigned value")
	}
}

// step resolves an increment or decrement. On a literal the node is kept
// as written.
func (s *State) step(node syntax.Expr, op syntax.UnaryOp, operand syntax.Expr) (syntax.Expr, error) {
	switch x := syntax.Unparen(operand).(type) {
	case syntax.Literal:
		return node, nil
	case syntax.Ident:
		v, err := s.Lookup(x.Name)
		if err != nil {
			return nil, err
		}
		arith := syntax.OpAdd
		if op == syntax.OpDec {
			arith = syntax.OpSub
		}
		return syntax.Bin(arith, v, syntax.Int(1)), nil
	default:
		return nil, syntax.Unsupported(node, "increment of a non-variable")
	}
}

// simplify folds x into a literal when it is made of numeric or string
// literals only. Boolean results stay symbolic.
func (s *State) simplify(x syntax.Expr) syntax.Expr {
	if !s.fold || !syntax.IsClosed(x) {
		return x
	}
	v, err := syntax.Constant(x)
	if err != nil {
		return x
	}
	lit, ok := syntax.FromConstant(v)
	if !ok || lit.Kind == syntax.LitBool {
		return x
	}
	return lit
}
