package rewrite

import "github.com/gnolang/tpath/internal/syntax"

// decompose splits the head of a compound condition into nested branches
// until it is atomic:
//
//	if a && b { T } else { E }  =>  if a { if b { T } else { E } } else { E }
//	if a || b { T } else { E }  =>  if a { T } else { if b { T } else { E } }
//
// Only the outermost condition is split; the inner branch is split when it
// is visited. Calls are never split.
func decompose(n syntax.If) syntax.If {
	for {
		b, ok := syntax.Unparen(n.Cond).(syntax.Binary)
		if !ok || !b.Op.IsLogical() {
			return n
		}
		inner := syntax.If{Cond: b.Y, Then: n.Then, Else: n.Else}
		if b.Op == syntax.OpAnd {
			n = syntax.If{Cond: b.X, Then: syntax.NewBlock(inner), Else: n.Else}
		} else {
			n = syntax.If{Cond: b.X, Then: n.Then, Else: syntax.NewBlock(inner)}
		}
	}
}
