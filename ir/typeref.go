package ir

import (
	"sync"

	"github.com/arcwell-db/arcql/schema"
)

// TypeRef is a hash-consed handle onto a schema.Type: every call to
// NewTypeRef for the same schema.ID returns the identical *TypeRef
// pointer, so TypeRef equality can be done with ==. Grounded on the
// teacher's package-level cache idiom (ir/quote.go's reserved-word map
// is the same "init-once, read-many, guarded map" shape), generalized
// here to a mutex since TypeRefs are created across the lifetime of a
// process rather than once at init.
type TypeRef struct {
	ID        schema.ID
	Name      schema.Name
	Collection bool // true when the referenced type is a Collection (needs element info)
}

var (
	typeRefMu    sync.Mutex
	typeRefCache = map[schema.ID]*TypeRef{}
)

// NewTypeRef returns the canonical *TypeRef for t, constructing and
// caching it on first use.
func NewTypeRef(t schema.Type) *TypeRef {
	typeRefMu.Lock()
	defer typeRefMu.Unlock()
	id := t.ID()
	if ref, ok := typeRefCache[id]; ok {
		return ref
	}
	_, isCollection := t.(schema.Collection)
	ref := &TypeRef{ID: id, Name: t.QualifiedName(), Collection: isCollection}
	typeRefCache[id] = ref
	return ref
}

// ResetTypeRefCache clears the process-wide cache. Exposed for tests
// that construct many throwaway schema.ID values and would otherwise
// leak cache entries across test cases.
func ResetTypeRefCache() {
	typeRefMu.Lock()
	defer typeRefMu.Unlock()
	typeRefCache = map[schema.ID]*TypeRef{}
}
