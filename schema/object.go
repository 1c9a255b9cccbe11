package schema

// Object is the base contract for every schema object: types, pointers,
// constraints, indexes, functions, operators, casts, and annotations
// (§3.2). Identity is immutable; name, ancestors, bases, and the field
// bag all vary by subtype but are exposed uniformly for the schema's
// lookup and referrer-index machinery.
type Object interface {
	ID() ID
	QualifiedName() Name
	Ancestors() []Name
	Bases() []Name
	Field(key string) (any, bool)
}

// Base is embedded by every concrete Object implementation. It is never
// mutated after construction — every "change" in this compiler produces
// a new value via a constructor, matching the persistent-schema design
// note (§9).
type Base struct {
	id        ID
	seq       CreationSeq
	name      Name
	ancestors []Name // transitively closed; the object itself is last by convention
	bases     []Name // direct bases only
	fields    map[string]any
}

// NewBase constructs the common header shared by all schema objects.
func NewBase(id ID, seq CreationSeq, name Name, bases []Name, ancestors []Name, fields map[string]any) Base {
	if fields == nil {
		fields = map[string]any{}
	}
	return Base{
		id:        id,
		seq:       seq,
		name:      name,
		ancestors: append([]Name(nil), ancestors...),
		bases:     append([]Name(nil), bases...),
		fields:    fields,
	}
}

func (b Base) ID() ID               { return b.id }
func (b Base) QualifiedName() Name  { return b.name }
func (b Base) Ancestors() []Name    { return append([]Name(nil), b.ancestors...) }
func (b Base) Bases() []Name        { return append([]Name(nil), b.bases...) }
func (b Base) CreationSeq() CreationSeq { return b.seq }

func (b Base) Field(key string) (any, bool) {
	v, ok := b.fields[key]
	return v, ok
}

// withName returns a copy of Base renamed to n; used by Rename commands.
func (b Base) withName(n Name) Base {
	b.name = n
	return b
}
