package schema

import "github.com/google/uuid"

// ID is the immutable 128-bit identity of a schema object (§3.2).
// Identity is independent of name: renaming an object preserves its ID,
// and NearestCommonAncestors breaks ties by comparing IDs in creation
// order (see Schema.NearestCommonAncestors).
type ID uuid.UUID

// NilID is the zero identity, never assigned to a real object.
var NilID ID

// NewID allocates a fresh random identity for a newly created object.
func NewID() ID {
	return ID(uuid.New())
}

// String renders the canonical UUID form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// CreationSeq provides the deterministic creation-order proxy used by
// NearestCommonAncestors tie-breaking. IDs are opaque, but a Schema
// hands them out in monotonically increasing creation sequence via
// Schema.nextSeq, so ordering on that sequence (not on the ID bytes
// themselves) is what "first by creation id" means in practice; see
// Base.CreationSeq.
type CreationSeq uint64
