package ir

import "github.com/arcwell-db/arcql/schema"

// PointerRef identifies the pointer a Set was reached through, when it
// was reached by traversing one (nil for a root set).
type PointerRef struct {
	Name        schema.Name
	Direction   Direction
	Cardinality schema.Cardinality
}

// ShapeElement is one (pointer, sub-Set) pair inside a shape
// projection, e.g. `{name, friends: {name}}`.
type ShapeElement struct {
	Pointer schema.Name
	Set     Handle
	// Compexpr is set when the shape element assigns a computed value
	// rather than projecting a stored pointer (insert/update shapes).
	Compexpr Expr
}

// Set is the IR's single node kind: every query fragment — a path
// step, a literal, a function call's result, a full SELECT — is
// represented as a Set. Its Type starts nil for an EmptySet and is
// filled in by package infer; its Expr is nil for a plain path/leaf
// set that does nothing but bind a PathId.
type Set struct {
	PathId *PathId
	Type   *TypeRef
	Expr   Expr
	RPtr   *PointerRef
	Shape  []ShapeElement
}

// IsEmptySet reports whether s has not yet been assigned a type —
// the arena-local analogue of the language's untyped `{}` literal,
// resolved once CommonType sees what it's used alongside (§4.2).
func (s *Set) IsEmptySet() bool {
	return s.Type == nil
}
