package schema

// CommandKind classifies the operation a Command performs on the
// object identified by its SubjectRef (§4.2).
type CommandKind int

const (
	CmdCreate CommandKind = iota
	CmdAlter
	CmdRename
	CmdRebase
	CmdDelete
)

func (k CommandKind) String() string {
	switch k {
	case CmdCreate:
		return "Create"
	case CmdAlter:
		return "Alter"
	case CmdRename:
		return "Rename"
	case CmdRebase:
		return "Rebase"
	case CmdDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// ObjectKind discriminates which concrete Object constructor a Command
// ultimately drives; it lets the delta dispatcher route a generic
// Command to the right typed emitter without a type switch on Object
// values that may not exist yet (Create commands build their subject
// from FieldUpdates rather than carrying one).
type ObjectKind int

const (
	KindScalarType ObjectKind = iota
	KindObjectType
	KindCollection
	KindPointer
	KindConstraint
	KindIndex
	KindFunction
	KindOperator
	KindCast
	KindAnnotation
	KindModule
)

// SubjectRef identifies the object a Command acts on. For CmdCreate, ID
// is the newly allocated identity the command will install; for every
// other kind it names an existing object.
type SubjectRef struct {
	Kind ObjectKind
	ID   ID
	Name Name
}

// FieldUpdate is a single (field, new-value) pair carried by a Create or
// Alter command. The set of legal keys and value types is defined
// per-ObjectKind by the delta package's emitters; Schema itself treats
// the value as opaque.
type FieldUpdate struct {
	Field    string
	Value    any
	OldValue any // populated by the planner for Alter, used by C9/C10 context
}

// Command is one node in a delta tree (§4.2). A command may carry
// sub-commands representing operations implied by it — e.g. a Rename
// of an ObjectType implies Rename sub-commands for its Pointers.
type Command struct {
	Kind    CommandKind
	Subject SubjectRef
	Updates []FieldUpdate
	// NewName is populated for CmdRename.
	NewName Name
	// NewBases is populated for CmdRebase — the full replacement bases list.
	NewBases []Name
	// IfExists / IfUnused soften CmdDelete failures; see WithoutObject.
	IfExists bool
	IfUnused bool

	Prerequisites []*Command
	Sub           []*Command // "Main" pass children, nested in declaration order
	Caused        []*Command
}

// Walk visits c and every descendant across the three passes in
// dispatch order: Prerequisites, then Main (c itself followed by Sub),
// then Caused (§4.2's three-pass ordering, mirrored by package delta's
// dispatcher). visit is called exactly once per command.
func (c *Command) Walk(visit func(*Command)) {
	for _, p := range c.Prerequisites {
		p.Walk(visit)
	}
	visit(c)
	for _, s := range c.Sub {
		s.Walk(visit)
	}
	for _, cc := range c.Caused {
		cc.Walk(visit)
	}
}

// Delta is the root of a change set: an ordered list of top-level
// commands, each dispatched independently in turn.
type Delta struct {
	Commands []*Command
}

// Walk visits every command in the delta, root to leaf, in the same
// three-pass order as Command.Walk.
func (d *Delta) Walk(visit func(*Command)) {
	for _, c := range d.Commands {
		c.Walk(visit)
	}
}

// Field looks up a FieldUpdate by name among c.Updates, returning the
// new value.
func (c *Command) Field(name string) (any, bool) {
	for _, u := range c.Updates {
		if u.Field == name {
			return u.Value, true
		}
	}
	return nil, false
}
