package syntax

// Stmt represents a statement node.
type Stmt interface {
	isStmt()
	String() string
}

// Block is an ordered sequence of statements.
type Block struct {
	List []Stmt
}

// If is a conditional. Else is nil for a single-armed if.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a pre-tested loop.
type While struct {
	Cond Expr
	Body Stmt
}

// For is a counted loop. Init and Cond may be nil. Post holds the
// incrementors.
type For struct {
	Init Stmt
	Cond Expr
	Post []Expr
	Body Stmt
}

// Return leaves the procedure. Value is nil for a bare return.
type Return struct {
	Value Expr
}

// Throw aborts the procedure with an exception value.
type Throw struct {
	Value Expr
}

// ExprStmt evaluates an expression for its effect: an assignment, an
// increment / decrement or a call.
type ExprStmt struct {
	X Expr
}

// LocalDecl declares a local variable. Type may be empty when inferred and
// Value may be nil when the zero value is used.
type LocalDecl struct {
	Name  string
	Type  string
	Value Expr
}

func (Block) isStmt()     {}
func (If) isStmt()        {}
func (While) isStmt()     {}
func (For) isStmt()       {}
func (Return) isStmt()    {}
func (Throw) isStmt()     {}
func (ExprStmt) isStmt()  {}
func (LocalDecl) isStmt() {}

// Param is a formal parameter of a procedure.
type Param struct {
	Name string
	Type string
}

// Func is a single procedure: the unit the engine rewrites.
type Func struct {
	Name    string
	Params  []Param
	Results []string
	Body    Block
}

// ParamNames returns the parameter names in declaration order.
func (f Func) ParamNames() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

// Helper functions to construct statements

// NewBlock creates a block.
func NewBlock(stmts ...Stmt) Block {
	return Block{List: stmts}
}

// NewIf creates an if statement; els may be nil.
func NewIf(cond Expr, then Stmt, els Stmt) If {
	return If{Cond: cond, Then: then, Else: els}
}

// Expression creates an expression statement.
func Expression(x Expr) ExprStmt {
	return ExprStmt{X: x}
}

// Set creates the statement name = value.
func Set(name string, value Expr) ExprStmt {
	return ExprStmt{X: Assign{Op: AssignSet, Name: name, Value: value}}
}

// Declare creates a local declaration with an inferred type.
func Declare(name string, value Expr) LocalDecl {
	return LocalDecl{Name: name, Value: value}
}

// IsTerminal reports whether s ends the current execution path.
func IsTerminal(s Stmt) bool {
	switch s.(type) {
	case Return, Throw:
		return true
	default:
		return false
	}
}

// EndsTerminal reports whether the last statement of list is terminal.
func EndsTerminal(list []Stmt) bool {
	return len(list) > 0 && IsTerminal(list[len(list)-1])
}

// ContainsTerminal reports whether any statement of list is terminal.
func ContainsTerminal(list []Stmt) bool {
	for _, s := range list {
		if IsTerminal(s) {
			return true
		}
	}
	return false
}

// Statements returns the statements of s: the list of a block, or s itself.
func Statements(s Stmt) []Stmt {
	switch s := s.(type) {
	case nil:
		return nil
	case Block:
		return s.List
	default:
		return []Stmt{s}
	}
}

// AsBlock wraps s in a block unless it already is one.
func AsBlock(s Stmt) Block {
	if b, ok := s.(Block); ok {
		return b
	}
	if s == nil {
		return Block{}
	}
	return Block{List: []Stmt{s}}
}

// Flatten splices every nested block of list into its parent, at any depth.
func Flatten(list []Stmt) []Stmt {
	out := make([]Stmt, 0, len(list))
	for _, s := range list {
		if b, ok := s.(Block); ok {
			out = append(out, Flatten(b.List)...)
			continue
		}
		out = append(out, s)
	}
	return out
}
