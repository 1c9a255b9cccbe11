package ir

import "github.com/arcwell-db/arcql/schema"

// Expr is the sum of every non-path IR expression kind. Concrete
// variants are the leaves Constant/Parameter, the call forms
// FuncCall/OpCall/TypeCast/TypeIntrospection, the constructor forms
// SetConstructor/TupleConstructor/ArrayConstructor, the indirection
// forms SliceIndirection/IndexIndirection, and — defined in stmt.go —
// the statement forms SelectStmt/InsertStmt/UpdateStmt/DeleteStmt/
// GroupStmt/ForStmt/WithStmt/ConfigStmt. package infer's Infer switches
// exhaustively over this sum (§4.2).
type Expr interface {
	exprTag()
}

// Constant is a literal scalar value already known at compile time.
type Constant struct {
	Value    any
	TypeName schema.Name
}

func (Constant) exprTag() {}

// Parameter is a query parameter reference (`$name`), typed by
// declaration rather than by the literal it will eventually bind to.
type Parameter struct {
	Name     string
	TypeName schema.Name
	Required bool
}

func (Parameter) exprTag() {}

// FuncCall invokes a schema.Function by name over positional and named
// arguments, each itself a Handle into the same arena.
type FuncCall struct {
	Func     schema.Name
	Args     []Handle
	NamedArgs map[string]Handle
}

func (FuncCall) exprTag() {}

// OpCall invokes an infix/prefix/postfix/ternary schema.Operator.
type OpCall struct {
	Op       schema.Name
	Kind     string // mirrors schema.Operator.Kind
	Operands []Handle
}

func (OpCall) exprTag() {}

// TypeCast converts Operand to Target, implicitly or explicitly.
type TypeCast struct {
	Operand  Handle
	Target   schema.Name
	Explicit bool
}

func (TypeCast) exprTag() {}

// TypeIntrospection reifies type metadata for INTROSPECT-style
// expressions; infer maps it to one of the Meta* pseudo-names (§6).
type TypeIntrospection struct {
	Target schema.Name
}

func (TypeIntrospection) exprTag() {}

// SetConstructor builds a set literal from its Elements (each a
// Handle), e.g. `{1, 2, 3}`.
type SetConstructor struct {
	Elements []Handle
}

func (SetConstructor) exprTag() {}

// TupleConstructor builds a tuple, named if Named is true (in which
// case Names is parallel to Elements).
type TupleConstructor struct {
	Elements []Handle
	Names    []string
	Named    bool
}

func (TupleConstructor) exprTag() {}

// ArrayConstructor builds an array literal.
type ArrayConstructor struct {
	Elements []Handle
}

func (ArrayConstructor) exprTag() {}

// SliceIndirection is `Operand[Start:Stop]`, either bound optional.
type SliceIndirection struct {
	Operand    Handle
	Start, Stop *Handle
}

func (SliceIndirection) exprTag() {}

// IndexIndirection is `Operand[Index]`.
type IndexIndirection struct {
	Operand Handle
	Index   Handle
}

func (IndexIndirection) exprTag() {}
