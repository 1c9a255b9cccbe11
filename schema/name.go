package schema

import "strings"

// Name identifies a schema object. An unqualified Name lives in the
// implicit "default" module; a qualified Name carries its own Module.
// Two Names are equal iff both components are equal — this is the
// schema's primary key for objects, grounded on the teacher's
// schema-qualified-name keying throughout internal/diff (e.g. functions
// and types are keyed by "schema.name").
type Name struct {
	Module string
	Name   string
}

// NewName returns an unqualified name in the default module.
func NewName(name string) Name {
	return Name{Module: "default", Name: name}
}

// NewQualName returns a name qualified by module.
func NewQualName(module, name string) Name {
	return Name{Module: module, Name: name}
}

// ParseName splits "module::name" into a qualified Name, or treats the
// whole string as unqualified if there is no separator.
func ParseName(s string) Name {
	if idx := strings.Index(s, "::"); idx >= 0 {
		return Name{Module: s[:idx], Name: s[idx+2:]}
	}
	return NewName(s)
}

// String renders the canonical "module::name" form.
func (n Name) String() string {
	if n.Module == "" {
		return n.Name
	}
	return n.Module + "::" + n.Name
}

// Equal reports component-wise equality.
func (n Name) Equal(other Name) bool {
	return n.Module == other.Module && n.Name == other.Name
}

// Less provides a deterministic total order, used wherever the spec
// calls for "deterministic" tie-breaking over sets of names.
func (n Name) Less(other Name) bool {
	if n.Module != other.Module {
		return n.Module < other.Module
	}
	return n.Name < other.Name
}
