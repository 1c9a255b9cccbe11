// Package infer implements static type inference over the ir package's
// expression DAG: given a compiled ir.Expr and the schema it was
// compiled against, it determines the schema.Type every node produces.
package infer

import (
	"fmt"

	"github.com/arcwell-db/arcql/ir"
)

// QueryError is raised for the five failure modes a well-formed but
// ill-typed query can hit: unresolvable common type among set members,
// use of a type that does not support a given operator, an array/tuple
// literal mixing incompatible element types, a cast with no defined
// conversion, and a path continuation through a pointer the operand's
// type does not declare.
type QueryError struct {
	Msg string
	Ctx ir.SourceContext
}

func (e *QueryError) Error() string {
	if e.Ctx.Line != 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Msg, e.Ctx.Line, e.Ctx.Column)
	}
	return e.Msg
}

// Bug is panicked (never returned) when Infer reaches a state that
// should be impossible given a well-formed IR tree — e.g. an Expr
// variant Infer has no case for, or a Handle that doesn't resolve in
// the arena. No package in this module recovers it, so it propagates
// as a panic out of Infer's callers, unlike a QueryError, which is
// returned as an error.
type Bug struct {
	Msg string
}

func (b Bug) Error() string { return "internal inference error: " + b.Msg }

func bug(format string, args ...any) {
	panic(Bug{Msg: fmt.Sprintf(format, args...)})
}
