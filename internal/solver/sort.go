package solver

import "github.com/gnolang/tpath/internal/syntax"

// Sort is the value domain of a solver variable.
type Sort int

const (
	SortUnknown Sort = iota
	SortInt
	SortBool
	SortString
)

func (s Sort) String() string {
	switch s {
	case SortInt:
		return "Int"
	case SortBool:
		return "Bool"
	case SortString:
		return "String"
	default:
		return "Unknown"
	}
}

// SortOf maps a Go type name onto a sort. Floating point types are
// approximated by integers.
func SortOf(typ string) Sort {
	switch typ {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"byte", "rune", "float32", "float64":
		return SortInt
	case "bool":
		return SortBool
	case "string":
		return SortString
	default:
		return SortUnknown
	}
}

// Var is a free variable of a query: a parameter, or an opaque call or
// member access term keyed by its rendering.
type Var struct {
	Key    string
	Sort   Sort
	Param  bool
	Opaque syntax.Expr
}

// Variables collects the free variables of conds with their sorts.
// Parameter sorts come from the declared type; the sort of an opaque term or
// of an untyped parameter is inferred from the context it appears in,
// defaulting to Int.
func Variables(params []syntax.Param, conds []syntax.Expr) ([]Var, error) {
	inf := &inference{
		index: make(map[string]int),
		types: make(map[string]Sort, len(params)),
	}
	for _, p := range params {
		inf.types[p.Name] = SortOf(p.Type)
	}
	for _, c := range conds {
		if _, err := inf.visit(c, SortBool); err != nil {
			return nil, err
		}
	}
	for i := range inf.vars {
		if inf.vars[i].Sort == SortUnknown {
			inf.vars[i].Sort = SortInt
		}
	}
	return inf.vars, nil
}

type inference struct {
	vars  []Var
	index map[string]int
	types map[string]Sort
}

func (inf *inference) bind(key string, param bool, opaque syntax.Expr, want Sort) Sort {
	i, ok := inf.index[key]
	if !ok {
		s := SortUnknown
		if param {
			s = inf.types[key]
		}
		inf.index[key] = len(inf.vars)
		inf.vars = append(inf.vars, Var{Key: key, Sort: s, Param: param, Opaque: opaque})
		i = len(inf.vars) - 1
	}
	if inf.vars[i].Sort == SortUnknown && want != SortUnknown {
		inf.vars[i].Sort = want
	}
	return inf.vars[i].Sort
}

// visit records the variables of x and returns its sort. want is the sort
// the enclosing context expects, SortUnknown when it does not constrain it.
func (inf *inference) visit(x syntax.Expr, want Sort) (Sort, error) {
	switch x := x.(type) {
	case syntax.Literal:
		switch x.Kind {
		case syntax.LitBool:
			return SortBool, nil
		case syntax.LitString:
			return SortString, nil
		case syntax.LitNil:
			return SortUnknown, nil
		default:
			return SortInt, nil
		}

	case syntax.Ident:
		if _, ok := inf.types[x.Name]; !ok {
			return SortUnknown, &syntax.LookupError{Name: x.Name}
		}
		return inf.bind(x.Name, true, nil, want), nil

	case syntax.Call, syntax.Member:
		return inf.bind(x.String(), false, x, want), nil

	case syntax.Paren:
		return inf.visit(x.X, want)

	case syntax.Cast:
		return inf.visit(x.X, SortOf(x.Type))

	case syntax.Prefix:
		switch x.Op {
		case syntax.OpNot:
			_, err := inf.visit(x.X, SortBool)
			return SortBool, err
		case syntax.OpNeg, syntax.OpPlus:
			_, err := inf.visit(x.X, SortInt)
			return SortInt, err
		}
		return SortUnknown, syntax.Unsupported(x, "in a path condition")

	case syntax.Binary:
		switch {
		case x.Op.IsLogical():
			if _, err := inf.visit(x.X, SortBool); err != nil {
				return SortUnknown, err
			}
			_, err := inf.visit(x.Y, SortBool)
			return SortBool, err

		case x.Op.IsComparison():
			l, err := inf.visit(x.X, SortUnknown)
			if err != nil {
				return SortUnknown, err
			}
			r, err := inf.visit(x.Y, l)
			if err != nil {
				return SortUnknown, err
			}
			if l == SortUnknown && r != SortUnknown {
				// type the left operand from the right one
				if _, err := inf.visit(x.X, r); err != nil {
					return SortUnknown, err
				}
			}
			return SortBool, nil

		default:
			l, err := inf.visit(x.X, want)
			if err != nil {
				return SortUnknown, err
			}
			r, err := inf.visit(x.Y, l)
			if err != nil {
				return SortUnknown, err
			}
			if l == SortUnknown && r != SortUnknown {
				if _, err := inf.visit(x.X, r); err != nil {
					return SortUnknown, err
				}
				l = r
			}
			return l, nil
		}

	default:
		return SortUnknown, syntax.Unsupported(x, "in a path condition")
	}
}
