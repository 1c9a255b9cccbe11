// Package ir is the canonical intermediate representation the compiler
// lowers queries into: an arena-allocated DAG of Set nodes, each
// carrying a PathId, a resolved TypeRef, and (for non-leaf sets) the
// Expr that produces it.
package ir

import "github.com/arcwell-db/arcql/schema"

// Direction mirrors schema.Direction for a path step's traversal sense.
type Direction = schema.Direction

// PathStep is one hop of a PathId: a named pointer or type, the
// direction it was traversed, and the namespace ("branch") it belongs
// to — distinct namespaces let the same pointer be traversed more than
// once within a single query without path collision (e.g. a self-join).
type PathStep struct {
	TypeOrPointer schema.Name
	Dir           Direction
	Namespace     string
}

// PathId is the structural identity of a Set: the sequence of steps
// taken from a query's root to reach it. Two sets with equal PathIds
// denote the same bound variable and must be assigned the same Set
// node in the arena (§9 design note "sets are identified structurally,
// not syntactically").
type PathId struct {
	Steps []PathStep
}

// Equal reports structural equality between two PathIds.
func (p *PathId) Equal(other *PathId) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.Steps) != len(other.Steps) {
		return false
	}
	for i, s := range p.Steps {
		o := other.Steps[i]
		if s.Dir != o.Dir || s.Namespace != o.Namespace || !s.TypeOrPointer.Equal(o.TypeOrPointer) {
			return false
		}
	}
	return true
}

// Extend returns a new PathId with step appended, leaving p untouched.
func (p *PathId) Extend(step PathStep) *PathId {
	steps := make([]PathStep, 0, len(p.stepsOrNil())+1)
	steps = append(steps, p.stepsOrNil()...)
	steps = append(steps, step)
	return &PathId{Steps: steps}
}

func (p *PathId) stepsOrNil() []PathStep {
	if p == nil {
		return nil
	}
	return p.Steps
}

// Rooted reports whether p starts a fresh path (no steps), i.e. it
// identifies a top-level iterator rather than a traversal from one.
func (p *PathId) Rooted() bool {
	return p == nil || len(p.Steps) == 0
}

// WithNamespace returns a copy of p with every step's namespace
// replaced by ns. Used to re-derive path identity in the synthetic
// "__derived__" module after CommonType amends an EmptySet's type
// (§4.2).
func (p *PathId) WithNamespace(ns string) *PathId {
	if p == nil {
		return nil
	}
	steps := make([]PathStep, len(p.Steps))
	for i, s := range p.Steps {
		s.Namespace = ns
		steps[i] = s
	}
	return &PathId{Steps: steps}
}
