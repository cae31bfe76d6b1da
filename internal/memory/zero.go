package memory

import "github.com/gnolang/tpath/internal/syntax"

// ZeroValue returns the zero value literal of a declared type.
func ZeroValue(typ string) (syntax.Expr, error) {
	switch typ {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"byte", "rune":
		return syntax.Int(0), nil
	case "float32", "float64":
		return syntax.Literal{Kind: syntax.LitFloat, Value: "0.0"}, nil
	case "bool":
		return syntax.Bool(false), nil
	case "string":
		return syntax.Str(""), nil
	default:
		return nil, &syntax.UnsupportedError{
			Kind:   "LocalDeclaration",
			Detail: "no initializer for type " + typ,
		}
	}
}
