// Package syntax defines the closed expression and statement model the
// rewrite engine reasons about.
//
// Expressions: literals, identifiers, binary and unary (prefix / postfix)
// operations, parentheses, casts, invocations, member accesses and
// assignments. Statements: blocks, if, while, for, return, throw, expression
// statements and local declarations.
//
// Every node is an immutable value. Transformations build new nodes and never
// modify an existing one in place, so a subtree may be shared freely between
// the branches of a rewritten tree.
package syntax
