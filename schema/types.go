package schema

// Type is the common interface for every first-class type in the schema
// (§3.2). Concrete kinds are ScalarType, ObjectType, Collection, and
// PseudoType.
type Type interface {
	Object
	// IsAbstract reports whether the type has no backing storage.
	IsAbstract() bool
	typeTag() // unexported: closes the Type sum over this package
}

// ScalarType models primitives and enums. An enum's Values is the
// ordered list of labels; a non-enum scalar has a nil Values, and its
// supertype chain (e.g. rooted at "str" or "int64") is carried by the
// embedded Base's bases and ancestors.
type ScalarType struct {
	Base
	Values []string // non-nil, ordered, for enums only
}

func (s ScalarType) IsAbstract() bool { return false }
func (ScalarType) typeTag()           {}

// IsEnum reports whether this scalar is an enumeration.
func (s ScalarType) IsEnum() bool { return s.Values != nil }

// ObjectTypeFlags captures the mutually-non-exclusive flavors an object
// type may take, per §3.2's bullet list.
type ObjectTypeFlags struct {
	Abstract     bool
	Union        bool
	Intersection bool
	View         bool
	Compound     bool // union or intersection; kept distinct for "is_compound_type" style checks
}

// ObjectType is a user-defined record type with pointers (§3.2).
type ObjectType struct {
	Base
	Flags    ObjectTypeFlags
	Pointers []Name // names of Pointer objects sourced from this type
	// Material is set only for View types: the concrete type the view is
	// derived from, per the "views may have a persisted alias" invariant.
	Material *Name
}

func (o ObjectType) IsAbstract() bool { return o.Flags.Abstract }
func (ObjectType) typeTag()           {}

// IsCompoundType reports whether this is a union or intersection type,
// which — per §3.3 storage invariants — never has backing storage.
// Recovered from original_source/edb/schema/objtypes.py's
// ObjectType.is_compound_type, which the teacher's catalog-reflection
// model never needed (a live catalog has no such type to reflect).
func (o ObjectType) IsCompoundType() bool { return o.Flags.Union || o.Flags.Intersection }

// IsView reports whether this object type is a derived, non-stored view.
func (o ObjectType) IsView() bool { return o.Flags.View }

// CollectionKind distinguishes the parameterized container shapes.
type CollectionKind int

const (
	CollectionArray CollectionKind = iota
	CollectionTuple
	CollectionNamedTuple
)

// Collection is a parameterized container type: Array<T>, Tuple<...>, or
// a named tuple.
type Collection struct {
	Base
	Kind          CollectionKind
	ElementTypes  []Name   // single element for Array, N members for Tuple/NamedTuple
	ElementNames  []string // parallel to ElementTypes, only for NamedTuple
}

func (Collection) IsAbstract() bool { return false }
func (Collection) typeTag()         {}

// PseudoKind enumerates the polymorphic placeholder types.
type PseudoKind int

const (
	PseudoAnyType PseudoKind = iota
	PseudoAnyTuple
)

// PseudoType models anytype/anytuple polymorphic placeholders.
type PseudoType struct {
	Base
	Kind PseudoKind
}

func (PseudoType) IsAbstract() bool { return true }
func (PseudoType) typeTag()         {}

// VoidType is the singleton pseudo-type CONFIG RESET/SET infer to.
// See infer package and DESIGN.md's Open Question decision: this
// replaces the original implementation's "return anytype, it's nonsense
// but we need to return something" placeholder with a real void-like
// type rather than silently reusing anytype.
var VoidType = PseudoType{
	Base: NewBase(NilID, 0, NewQualName("std", "void"), nil, nil, nil),
	Kind: PseudoKind(-1),
}

// IsVoid reports whether t is the Void placeholder.
func IsVoid(t Type) bool {
	p, ok := t.(PseudoType)
	return ok && p.Kind == PseudoKind(-1)
}

// Well-known built-in scalar names, used throughout infer and storage
// for built-in-vs-custom classification (mirrors the teacher's
// ir.IsBuiltInType / ir.IsTextLikeType classification in
// internal/diff/column.go, generalized from Postgres type names to
// source-language scalar names).
var builtinScalars = map[string]bool{
	"bool": true, "str": true, "bytes": true, "json": true,
	"int16": true, "int32": true, "int64": true,
	"float32": true, "float64": true, "bigint": true, "decimal": true,
	"uuid": true, "datetime": true, "duration": true,
	"local_date": true, "local_time": true, "local_datetime": true,
}

// IsBuiltinScalar reports whether name refers to one of the built-in
// primitive scalar types.
func IsBuiltinScalar(name Name) bool {
	return name.Module == "std" && builtinScalars[name.Name]
}

// IsTextLike reports whether name is str/json/bytes — the scalar
// kinds that commonly need an explicit USING cast when converting to a
// non-built-in target, per emit_typechange.go.
func IsTextLike(name Name) bool {
	return name.Module == "std" && (name.Name == "str" || name.Name == "json" || name.Name == "bytes")
}
