package syntax

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is wrapped by every UnsupportedError.
	ErrUnsupported = errors.New("unsupported construct")
	// ErrUnknownIdentifier is wrapped by every LookupError.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// UnsupportedError reports a node outside the supported closed sets, or an
// internal invariant violated by a node of the given kind.
type UnsupportedError struct {
	Kind   string
	Detail string
}

func (e *UnsupportedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrUnsupported, e.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrUnsupported, e.Kind, e.Detail)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Unsupported builds an UnsupportedError for node.
func Unsupported(node any, detail string) error {
	return &UnsupportedError{Kind: KindOf(node), Detail: detail}
}

// LookupError reports a reference to a name that is neither a parameter nor
// a declared local.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownIdentifier, e.Name)
}

func (e *LookupError) Unwrap() error {
	return ErrUnknownIdentifier
}

// KindOf names the variant of an expression or statement for diagnostics.
func KindOf(node any) string {
	switch n := node.(type) {
	case Literal:
		return "Literal"
	case Ident:
		return "Identifier"
	case Binary:
		return "Binary(" + n.Op.String() + ")"
	case Prefix:
		return "Prefix(" + n.Op.String() + ")"
	case Postfix:
		return "Postfix(" + n.Op.String() + ")"
	case Paren:
		return "Parenthesized"
	case Cast:
		return "Cast"
	case Call:
		return "Invocation"
	case Member:
		return "MemberAccess"
	case Assign:
		return "Assignment(" + n.Op.String() + ")"
	case Block:
		return "Block"
	case If:
		return "If"
	case While:
		return "While"
	case For:
		return "For"
	case Return:
		return "Return"
	case Throw:
		return "Throw"
	case ExprStmt:
		return "ExpressionStatement"
	case LocalDecl:
		return "LocalDeclaration"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", node)
	}
}
