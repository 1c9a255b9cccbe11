// Package dbops defines the backend operation buffer every DDL emitter
// appends to, plus the identifier/literal quoting helpers every emitter
// shares. Kept as its own leaf package (no dependency on package schema
// or package delta) so it can be imported by both package delta and
// package views without creating an import cycle between them.
package dbops

import "github.com/arcwell-db/arcql/internal/logger"

// Op is one unit of backend work: a single SQL statement plus a short
// human-readable description used in dry-run output (cmd/plan).
type Op struct {
	SQL         string
	Description string
}

// Buffer is an ordered, append-only collection of Ops — the "pgops"
// style accumulator the dispatcher and every emitter write into.
type Buffer struct {
	ops []Op
}

// Append adds op to the end of the buffer.
func (b *Buffer) Append(op Op) {
	b.ops = append(b.ops, op)
}

// AppendSQL appends a single already-rendered SQL statement (dbops
// deliberately has no rendering logic of its own), first round-trip
// parsing it through ValidateSQL as a defensive check. A validation
// failure is logged, not fatal: the statement is still queued, since a
// grammar gap in the validator must never block an otherwise-correct
// emitter from producing its plan.
func (b *Buffer) AppendSQL(sql, description string) {
	if err := ValidateSQL(sql); err != nil {
		logger.For("dbops").Warn("emitted SQL failed defensive parse validation",
			"description", description, "error", err)
	}
	b.Append(Op{SQL: sql, Description: description})
}

// Ops returns the accumulated operations in append order.
func (b *Buffer) Ops() []Op {
	return append([]Op(nil), b.ops...)
}

// Len reports how many operations have been accumulated so far.
func (b *Buffer) Len() int {
	return len(b.ops)
}
