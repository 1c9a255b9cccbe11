package schema

import (
	"fmt"
	"sort"
)

// Schema is the persistent, immutable value holding every schema object
// (§4.1). Every mutation returns a new Schema handle; the old one
// remains valid and fully usable — this is the "safe sharing primitive"
// of design note §9. Concurrent readers of distinct snapshots never
// need to coordinate because none of the exported accessors below ever
// writes through a returned pointer.
type Schema struct {
	byID   map[ID]Object
	byName map[Name]ID
	// moduleAliases lets ByName resolve an unqualified lookup against a
	// set of "open" modules, mirroring the source language's WITH MODULE.
	moduleAliases map[string]string
	// referrers[target][field] = set of object IDs that reference target
	// through that named field. Rebuilt incrementally on each mutation.
	referrers map[ID]map[string][]ID
	nextSeq   CreationSeq
}

// NewSchema returns an empty schema with no objects.
func NewSchema() *Schema {
	return &Schema{
		byID:          map[ID]Object{},
		byName:        map[Name]ID{},
		moduleAliases: map[string]string{},
		referrers:     map[ID]map[string][]ID{},
	}
}

// clone returns a shallow structural copy whose inner maps are
// independently mutable, preserving the original's map contents. This
// is the single choke point every mutator goes through so the
// copy-on-write discipline can't be forgotten in one branch and not
// another.
func (s *Schema) clone() *Schema {
	ns := &Schema{
		byID:          make(map[ID]Object, len(s.byID)+1),
		byName:        make(map[Name]ID, len(s.byName)+1),
		moduleAliases: make(map[string]string, len(s.moduleAliases)),
		referrers:     make(map[ID]map[string][]ID, len(s.referrers)),
		nextSeq:       s.nextSeq,
	}
	for k, v := range s.byID {
		ns.byID[k] = v
	}
	for k, v := range s.byName {
		ns.byName[k] = v
	}
	for k, v := range s.moduleAliases {
		ns.moduleAliases[k] = v
	}
	for k, m := range s.referrers {
		nm := make(map[string][]ID, len(m))
		for f, ids := range m {
			nm[f] = append([]ID(nil), ids...)
		}
		ns.referrers[k] = nm
	}
	return ns
}

// NextSeq allocates the next creation-order sequence number, consumed by
// callers constructing a new Base before handing the object to WithObject.
func (s *Schema) NextSeq() CreationSeq {
	return s.nextSeq + 1
}

// AllObjects returns every object currently in the schema, in no
// particular order. Callers that need a deterministic order (e.g.
// package views scanning for inheritance descendants) should sort the
// result themselves.
func (s *Schema) AllObjects() []Object {
	out := make([]Object, 0, len(s.byID))
	for _, o := range s.byID {
		out = append(out, o)
	}
	return out
}

// ByID looks up an object by its immutable identity.
func (s *Schema) ByID(id ID) (Object, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// ByName resolves a (possibly unqualified) name, applying module
// aliases for unqualified lookups (§4.1).
func (s *Schema) ByName(n Name) (Object, bool) {
	if id, ok := s.byName[n]; ok {
		o, ok := s.byID[id]
		return o, ok
	}
	if n.Module == "" || n.Module == "default" {
		for _, mod := range s.moduleAliases {
			if id, ok := s.byName[Name{Module: mod, Name: n.Name}]; ok {
				if o, ok := s.byID[id]; ok {
					return o, true
				}
			}
		}
	}
	return nil, false
}

// WithModuleAlias registers (or removes, if target == "") an alias so
// that unqualified names resolve against module target as well as
// "default".
func (s *Schema) WithModuleAlias(alias, target string) *Schema {
	ns := s.clone()
	if target == "" {
		delete(ns.moduleAliases, alias)
	} else {
		ns.moduleAliases[alias] = target
	}
	return ns
}

// WithObject returns a new Schema with obj inserted (create) or replaced
// (alter/rename — callers pass the object under its new name, and must
// have already removed the stale name entry via WithoutName if renaming).
func (s *Schema) WithObject(obj Object) *Schema {
	ns := s.clone()
	ns.byID[obj.ID()] = obj
	ns.byName[obj.QualifiedName()] = obj.ID()
	if seq := creationSeqOf(obj); seq >= ns.nextSeq {
		ns.nextSeq = seq + 1
	}
	return ns
}

// creationSeqOf extracts the embedded Base's sequence number via the
// Object's concrete type; every Object in this package embeds Base, so
// this type switch is exhaustive over the sum defined in types.go,
// pointer.go, and aux.go.
func creationSeqOf(obj Object) CreationSeq {
	switch o := obj.(type) {
	case ScalarType:
		return o.seq
	case ObjectType:
		return o.seq
	case Collection:
		return o.seq
	case PseudoType:
		return o.seq
	case Pointer:
		return o.seq
	case Constraint:
		return o.seq
	case Index:
		return o.seq
	case Function:
		return o.seq
	case Operator:
		return o.seq
	case Cast:
		return o.seq
	case Annotation:
		return o.seq
	default:
		return 0
	}
}

// WithoutName removes a name→id mapping without removing the object
// itself (used mid-rename, before WithObject installs the new name).
func (s *Schema) WithoutName(n Name) *Schema {
	ns := s.clone()
	delete(ns.byName, n)
	return ns
}

// WithoutObject removes obj entirely. Delete fails (returns an error,
// leaving s untouched) unless all referrers have already been removed
// or the caller passed ifUnused=true and there happen to be none.
func (s *Schema) WithoutObject(id ID, ifUnused bool) (*Schema, error) {
	obj, ok := s.byID[id]
	if !ok {
		return s, fmt.Errorf("%w: unknown object id %s", ErrUnknownObject, id)
	}
	if refs := s.referrersOf(id); len(refs) > 0 {
		if ifUnused {
			return s, nil
		}
		return s, fmt.Errorf("%w: %s is still referenced by %d object(s)",
			ErrReferentialIntegrity, obj.QualifiedName(), len(refs))
	}
	ns := s.clone()
	delete(ns.byID, id)
	delete(ns.byName, obj.QualifiedName())
	delete(ns.referrers, id)
	for _, m := range ns.referrers {
		for field, ids := range m {
			m[field] = removeID(ids, id)
		}
	}
	return ns, nil
}

func removeID(ids []ID, target ID) []ID {
	out := ids[:0:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// WithReference records that referrer references target through field,
// maintaining the referrer index consulted by WithoutObject and by
// storage/views for inheritance bookkeeping.
func (s *Schema) WithReference(referrer, target ID, field string) *Schema {
	ns := s.clone()
	m, ok := ns.referrers[target]
	if !ok {
		m = map[string][]ID{}
		ns.referrers[target] = m
	}
	for _, existing := range m[field] {
		if existing == referrer {
			return ns
		}
	}
	m[field] = append(m[field], referrer)
	return ns
}

// Referrers returns the objects that reference target through field,
// or through any field if field is "".
func (s *Schema) Referrers(target ID, field string) []Object {
	m := s.referrers[target]
	var out []Object
	if field != "" {
		for _, id := range m[field] {
			if o, ok := s.byID[id]; ok {
				out = append(out, o)
			}
		}
		return out
	}
	seen := map[ID]bool{}
	for _, ids := range m {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if o, ok := s.byID[id]; ok {
				out = append(out, o)
			}
		}
	}
	return out
}

func (s *Schema) referrersOf(target ID) []ID {
	var out []ID
	for _, ids := range s.referrers[target] {
		out = append(out, ids...)
	}
	return out
}

// NearestCommonAncestors computes the set of maximal types A such that
// every type in ts is a subclass of some member of A (§4.1). Selection
// among multiple NCAs is deterministic: the result is sorted by creation
// sequence ascending and the first entry is the canonical choice, per
// the documented Open Question decision in DESIGN.md.
func (s *Schema) NearestCommonAncestors(ts []Type) []Type {
	if len(ts) == 0 {
		return nil
	}
	// Intersection of ancestor sets (each type's own ancestor list
	// already includes itself last, per the §3.2 invariant).
	common := map[Name]bool{}
	for _, n := range ts[0].Ancestors() {
		common[n] = true
	}
	for _, t := range ts[1:] {
		anc := map[Name]bool{}
		for _, n := range t.Ancestors() {
			anc[n] = true
		}
		for n := range common {
			if !anc[n] {
				delete(common, n)
			}
		}
	}
	if len(common) == 0 {
		return nil
	}
	// Maximal = not an ancestor of any other candidate in common.
	var candidates []Type
	for n := range common {
		obj, ok := s.ByName(n)
		if !ok {
			continue
		}
		if t, ok := obj.(Type); ok {
			candidates = append(candidates, t)
		}
	}
	// A candidate is kept only if it is not a proper ancestor of some
	// other candidate in the set — i.e. it is the nearest (most
	// specific), not the most general, common ancestor.
	var nearest []Type
	for _, c := range candidates {
		supersededByOther := false
		for _, other := range candidates {
			if other.QualifiedName() == c.QualifiedName() {
				continue
			}
			for _, n := range other.Ancestors() {
				if n == c.QualifiedName() {
					supersededByOther = true
					break
				}
			}
			if supersededByOther {
				break
			}
		}
		if !supersededByOther {
			nearest = append(nearest, c)
		}
	}
	sort.Slice(nearest, func(i, j int) bool {
		return creationSeqOf(nearest[i]) < creationSeqOf(nearest[j])
	})
	return nearest
}
