package rewrite

import "github.com/gnolang/tpath/internal/syntax"

// canonicalize brings the statements of a block into the shape the engine
// visits: no loops, no nested blocks and a single branching statement that
// carries every statement following it in each of its open arms.
func canonicalize(list []syntax.Stmt, bound int) ([]syntax.Stmt, error) {
	stmts, err := expand(list, bound)
	if err != nil {
		return nil, err
	}

	for {
		i, err := penultimate(stmts)
		if err != nil {
			return nil, err
		}
		if i < 0 {
			break
		}
		merged, err := mergeTail(stmts[i], stmts[i+1:])
		if err != nil {
			return nil, err
		}
		stmts = append(stmts[:i:i], merged)
	}

	// simple statements after the last branch belong to each of its arms
	last := lastStructural(stmts)
	if last >= 0 && last < len(stmts)-1 {
		if _, ok := stmts[last].(syntax.If); ok {
			merged, err := mergeTail(stmts[last], stmts[last+1:])
			if err != nil {
				return nil, err
			}
			stmts = append(stmts[:last:last], merged)
		}
	}
	return stmts, nil
}

// expand unrolls loops and splices nested blocks, recursively.
func expand(list []syntax.Stmt, bound int) ([]syntax.Stmt, error) {
	out := make([]syntax.Stmt, 0, len(list))
	for _, s := range list {
		switch s := s.(type) {
		case syntax.Block:
			inner, err := expand(s.List, bound)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		case syntax.While:
			out = append(out, unrollWhile(s, bound))
		case syntax.For:
			unrolled, err := unrollFor(s, bound)
			if err != nil {
				return nil, err
			}
			out = append(out, unrolled...)
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func isSimple(s syntax.Stmt) bool {
	switch s.(type) {
	case syntax.LocalDecl, syntax.ExprStmt:
		return true
	default:
		return false
	}
}

// penultimate returns the index of the second to last structural statement,
// or -1 when there are fewer than two.
func penultimate(stmts []syntax.Stmt) (int, error) {
	count := 0
	for i := len(stmts) - 1; i >= 0; i-- {
		switch stmts[i].(type) {
		case syntax.LocalDecl, syntax.ExprStmt:
			continue
		case syntax.If, syntax.Return, syntax.Throw, syntax.Block:
		case syntax.While, syntax.For:
			return -1, syntax.Unsupported(stmts[i], "loop left after unrolling")
		default:
			return -1, syntax.Unsupported(stmts[i], "statement")
		}
		count++
		if count == 2 {
			return i, nil
		}
	}
	return -1, nil
}

func lastStructural(stmts []syntax.Stmt) int {
	for i := len(stmts) - 1; i >= 0; i-- {
		if !isSimple(stmts[i]) {
			return i
		}
	}
	return -1
}

// mergeTail appends tail to every arm of s that does not end the path,
// synthesizing an else arm when s has none.
func mergeTail(s syntax.Stmt, tail []syntax.Stmt) (syntax.Stmt, error) {
	n, ok := s.(syntax.If)
	if !ok {
		return nil, syntax.Unsupported(s, "only a branch may precede the last structural statement")
	}

	then := syntax.Flatten(syntax.Statements(n.Then))
	if !syntax.EndsTerminal(then) {
		then = concat(then, tail)
	}

	var els []syntax.Stmt
	if n.Else != nil {
		els = syntax.Flatten(syntax.Statements(n.Else))
		if !syntax.EndsTerminal(els) {
			els = concat(els, tail)
		}
	} else {
		els = concat(nil, tail)
	}

	merged := syntax.If{Cond: n.Cond, Then: syntax.Block{List: then}}
	if len(els) > 0 {
		merged.Else = syntax.Block{List: els}
	}
	return merged, nil
}
