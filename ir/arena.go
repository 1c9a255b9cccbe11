package ir

// Handle is an index into an Arena. Set equality for DAG-sharing
// purposes is by Handle, not deep structural equality (§9 design note
// "tree with shared nodes, no cycles") — two distinct Handles may point
// at structurally identical Sets without being considered the same
// node, because they may independently evolve (e.g. get amended with
// different derived types) as inference proceeds.
type Handle int

// InvalidHandle never indexes a real Set.
const InvalidHandle Handle = -1

// Arena is an append-only store of Set nodes. It never shrinks and
// never reuses a Handle, so a Handle taken at one point in a
// compilation remains valid for the arena's entire lifetime.
type Arena struct {
	sets []*Set
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc appends s and returns its Handle.
func (a *Arena) Alloc(s *Set) Handle {
	a.sets = append(a.sets, s)
	return Handle(len(a.sets) - 1)
}

// Get dereferences h. It panics on an out-of-range handle, since an
// invalid handle indicates a compiler bug rather than recoverable user
// error (callers that might hold a stale handle should check bounds
// with Len first).
func (a *Arena) Get(h Handle) *Set {
	return a.sets[h]
}

// Len reports how many sets have been allocated.
func (a *Arena) Len() int {
	return len(a.sets)
}

// Replace overwrites the Set at h in place — used by CommonType's
// empty-set amendment (§4.2), which must update a node's recorded
// Type after it was first allocated as an EmptySet.
func (a *Arena) Replace(h Handle, s *Set) {
	a.sets[h] = s
}
