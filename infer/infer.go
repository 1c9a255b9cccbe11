package infer

import (
	"github.com/arcwell-db/arcql/ir"
	"github.com/arcwell-db/arcql/schema"
)

// Env carries everything a single inference pass needs: the schema
// snapshot being compiled against, the arena the IR being inferred
// lives in, and two memo tables so a shared subexpression (the whole
// point of the arena being a DAG, not a tree) is only inferred once.
type Env struct {
	Schema *schema.Schema
	Arena  *ir.Arena

	// Memo caches Infer's result for an Expr's owning Handle.
	Memo map[ir.Handle]schema.Type
	// SetTypes additionally records types assigned to path-leaf Sets
	// (those with a nil Expr, or amended via CommonType), which Infer
	// itself never populates since it only ever sees an Expr, not a Set.
	SetTypes map[ir.Handle]schema.Type
}

// NewEnv returns an Env ready to infer within sch/arena.
func NewEnv(sch *schema.Schema, arena *ir.Arena) *Env {
	return &Env{
		Schema:   sch,
		Arena:    arena,
		Memo:     map[ir.Handle]schema.Type{},
		SetTypes: map[ir.Handle]schema.Type{},
	}
}

// TypeOf resolves the type of the Set at h, memoizing. It returns
// (nil, nil) — not an error — for a Set that is still an untyped
// EmptySet; CommonType is the only caller expected to treat that as
// meaningful rather than a failure.
func (env *Env) TypeOf(h ir.Handle) (schema.Type, error) {
	if t, ok := env.Memo[h]; ok {
		return t, nil
	}
	if t, ok := env.SetTypes[h]; ok {
		env.Memo[h] = t
		return t, nil
	}
	set := env.Arena.Get(h)
	if set.Type != nil {
		obj, ok := env.Schema.ByID(set.Type.ID)
		if !ok {
			bug("set's TypeRef %s does not resolve in the schema", set.Type.ID)
		}
		t := obj.(schema.Type)
		env.Memo[h] = t
		return t, nil
	}
	if set.Expr == nil {
		// A genuinely untyped EmptySet, or a bare path leaf waiting on a
		// sibling CommonType call to amend it.
		return nil, nil
	}
	t, err := Infer(set.Expr, env)
	if err != nil {
		return nil, err
	}
	env.Memo[h] = t
	return t, nil
}

// Infer determines the schema.Type node produces, dispatching by Go
// type switch over the ir.Expr sum — one rule per variant, mirroring
// the teacher's single-dispatch-by-type-switch idiom (internal/diff/
// type.go's `switch typeObj.Kind`), generalized from Postgres column
// types to the full query-language type lattice.
func Infer(node ir.Expr, env *Env) (schema.Type, error) {
	switch n := node.(type) {
	case ir.Constant:
		return env.resolveName(n.TypeName)

	case ir.Parameter:
		return env.resolveName(n.TypeName)

	case ir.FuncCall:
		return env.inferFuncCall(n)

	case ir.OpCall:
		return env.inferOpCall(n)

	case ir.TypeCast:
		return env.resolveName(n.Target)

	case ir.TypeIntrospection:
		return env.inferTypeIntrospection(n)

	case ir.SetConstructor:
		t, err := CommonType(env, n.Elements)
		if err != nil {
			return nil, err
		}
		return t, nil

	case ir.TupleConstructor:
		return env.inferTupleConstructor(n)

	case ir.ArrayConstructor:
		t, err := CommonType(env, n.Elements)
		if err != nil {
			return nil, err
		}
		return env.arrayOf(t)

	case ir.SliceIndirection:
		return env.inferSliceIndirection(n)

	case ir.IndexIndirection:
		return env.inferIndexIndirection(n)

	case ir.SelectStmt:
		return env.TypeOf(n.Result)

	case ir.InsertStmt:
		return env.resolveName(n.Subject)

	case ir.UpdateStmt, ir.DeleteStmt:
		return env.inferSubjectStmt(n)

	case ir.GroupStmt:
		return env.TypeOf(n.Result)

	case ir.ForStmt:
		return env.TypeOf(n.Result)

	case ir.WithStmt:
		return env.TypeOf(n.Body)

	case ir.ConfigStmt:
		return schema.VoidType, nil

	default:
		bug("Infer has no rule for IR node %T", node)
		panic("unreachable")
	}
}

func (env *Env) resolveName(name schema.Name) (schema.Type, error) {
	obj, ok := env.Schema.ByName(name)
	if !ok {
		bug("type name %s does not resolve in the schema", name)
	}
	t, ok := obj.(schema.Type)
	if !ok {
		bug("name %s resolved to a non-type object", name)
	}
	return t, nil
}

// inferFuncCall types a function call as its declared ReturnType,
// looking the function up by name. Overload resolution among multiple
// functions sharing a name is a declared Non-goal: the schema model
// stores one schema.Function per distinct signature name, so this
// rule simply trusts the name to be unambiguous.
func (env *Env) inferFuncCall(n ir.FuncCall) (schema.Type, error) {
	obj, ok := env.Schema.ByName(n.Func)
	if !ok {
		return nil, &QueryError{Msg: "unknown function " + n.Func.String()}
	}
	fn, ok := obj.(schema.Function)
	if !ok {
		bug("name %s resolved to a non-function object", n.Func)
	}
	// Set-returning functions still infer to the element type here; the
	// MANY cardinality is tracked separately by the planner, not by this
	// type lattice.
	return env.resolveName(fn.ReturnType)
}

// inferOpCall types a comparison/logical operator as bool
// (TypeCheckOp), and any other operator by its declared ReturnType.
func (env *Env) inferOpCall(n ir.OpCall) (schema.Type, error) {
	switch n.Op.Name {
	case "=", "!=", "?=", "?!=", "<", "<=", ">", ">=", "and", "or", "not", "in", "not in", "like", "ilike":
		return TypeCheckOp(), nil
	}
	obj, ok := env.Schema.ByName(n.Op)
	if !ok {
		return nil, &QueryError{Msg: "unknown operator " + n.Op.String()}
	}
	op, ok := obj.(schema.Operator)
	if !ok {
		bug("name %s resolved to a non-operator object", n.Op)
	}
	return env.resolveName(op.ReturnType)
}

// TypeCheckOp is the fixed result type of every comparison and
// boolean-logic operator (§4.2 rule "TypeCheckOp -> always bool").
func TypeCheckOp() schema.Type {
	return schema.ScalarType{
		Base: schema.NewBase(schema.NilID, 0, schema.NewQualName("std", "bool"), nil, []schema.Name{schema.NewQualName("std", "bool")}, nil),
	}
}

// MetaScalarType, MetaObjectType, MetaArray, and MetaTuple are the
// pseudo-names TypeIntrospection resolves against (§4.2 rule
// "TypeIntrospection"). They live in the "schema" introspection
// module, distinct from the std scalar "str"/"int64"/etc. names.
var (
	MetaScalarType = schema.NewQualName("schema", "ScalarType")
	MetaObjectType = schema.NewQualName("schema", "ObjectType")
	MetaArray      = schema.NewQualName("schema", "Array")
	MetaTuple      = schema.NewQualName("schema", "Tuple")
)

func (env *Env) inferTypeIntrospection(n ir.TypeIntrospection) (schema.Type, error) {
	obj, ok := env.Schema.ByName(n.Target)
	if !ok {
		return nil, &QueryError{Msg: "unknown type " + n.Target.String()}
	}
	var metaName schema.Name
	switch obj.(type) {
	case schema.ScalarType:
		metaName = MetaScalarType
	case schema.ObjectType:
		metaName = MetaObjectType
	case schema.Collection:
		if c := obj.(schema.Collection); c.Kind == schema.CollectionArray {
			metaName = MetaArray
		} else {
			metaName = MetaTuple
		}
	default:
		metaName = MetaObjectType
	}
	return env.resolveName(metaName)
}

func (env *Env) inferTupleConstructor(n ir.TupleConstructor) (schema.Type, error) {
	var elemNames []schema.Name
	for _, h := range n.Elements {
		t, err := env.TypeOf(h)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, &QueryError{Msg: "cannot determine the type of an empty tuple element"}
		}
		elemNames = append(elemNames, t.QualifiedName())
	}
	kind := schema.CollectionTuple
	names := n.Names
	if !n.Named {
		names = nil
	} else {
		kind = schema.CollectionNamedTuple
	}
	return schema.Collection{
		Base:         schema.NewBase(schema.NewID(), 0, schema.Name{}, nil, nil, nil),
		Kind:         kind,
		ElementTypes: elemNames,
		ElementNames: names,
	}, nil
}

func (env *Env) arrayOf(elem schema.Type) (schema.Type, error) {
	return schema.Collection{
		Base:         schema.NewBase(schema.NewID(), 0, schema.Name{}, nil, nil, nil),
		Kind:         schema.CollectionArray,
		ElementTypes: []schema.Name{elem.QualifiedName()},
	}, nil
}

// stdInt64Name is the target every slice/index integer bound must be
// implicitly castable to (§4.2 "Slice"/"Index").
var stdInt64Name = schema.NewQualName("std", "int64")

// isSliceable reports whether t is one of the operand kinds §4.2
// "Slice" allows: string/bytes/json, array, or the anytype polymorphic
// placeholder.
func isSliceable(t schema.Type) bool {
	switch v := t.(type) {
	case schema.PseudoType:
		return v.Kind == schema.PseudoAnyType
	case schema.Collection:
		return v.Kind == schema.CollectionArray
	case schema.ScalarType:
		return schema.IsTextLike(v.QualifiedName())
	default:
		return false
	}
}

// isIntLikeIndex reports whether t implicitly casts to std::int64 —
// the bound every slice index, and every non-json index, must satisfy.
func isIntLikeIndex(t schema.Type) bool {
	if t == nil {
		return false
	}
	_, ok := FindCommonImplicitlyCastableType(t.QualifiedName(), stdInt64Name)
	return ok
}

// isStrIndex reports whether t is std::str — the one non-int index
// kind json additionally accepts (§4.2 "Index").
func isStrIndex(t schema.Type) bool {
	if t == nil {
		return false
	}
	n := t.QualifiedName()
	return n.Module == "std" && n.Name == "str"
}

func indexTypeName(t schema.Type) string {
	if t == nil {
		return "<empty set>"
	}
	return t.QualifiedName().String()
}

// inferSliceIndirection implements §4.2 "Slice": the operand must be
// string/bytes/json/array/anytype; Start/Stop, when present, must be
// implicitly castable to int64 — any still-untyped EmptySet bound is
// amended to int64 via CommonType (§8 scenario 4); the result type is
// the operand's own type.
func (env *Env) inferSliceIndirection(n ir.SliceIndirection) (schema.Type, error) {
	operandType, err := env.TypeOf(n.Operand)
	if err != nil {
		return nil, err
	}
	if operandType == nil {
		return nil, &QueryError{Msg: "cannot slice an expression of indeterminate type"}
	}
	if !isSliceable(operandType) {
		return nil, &QueryError{Msg: "cannot slice " + operandType.QualifiedName().String()}
	}

	var bounds []ir.Handle
	if n.Start != nil {
		bounds = append(bounds, *n.Start)
	}
	if n.Stop != nil {
		bounds = append(bounds, *n.Stop)
	}
	if len(bounds) > 0 {
		boundType, err := CommonType(env, bounds)
		if err != nil {
			return nil, err
		}
		if !isIntLikeIndex(boundType) {
			return nil, &QueryError{Msg: "cannot slice " + operandType.QualifiedName().String() + " by " + boundType.QualifiedName().String()}
		}
	}
	return operandType, nil
}

// inferIndexIndirection implements §4.2 "Index"'s per-operand rule:
// strings index to strings, bytes to bytes (both requiring an int
// index), json to json (accepting an int or str index), array to its
// element type (requiring an int index).
func (env *Env) inferIndexIndirection(n ir.IndexIndirection) (schema.Type, error) {
	operandType, err := env.TypeOf(n.Operand)
	if err != nil {
		return nil, err
	}
	if operandType == nil {
		return nil, &QueryError{Msg: "cannot index an expression of indeterminate type"}
	}
	indexType, err := env.TypeOf(n.Index)
	if err != nil {
		return nil, err
	}

	switch t := operandType.(type) {
	case schema.Collection:
		if t.Kind != schema.CollectionArray {
			return nil, &QueryError{Msg: "cannot index " + t.QualifiedName().String()}
		}
		if !isIntLikeIndex(indexType) {
			return nil, &QueryError{Msg: "cannot index " + t.QualifiedName().String() + " by " + indexTypeName(indexType)}
		}
		if len(t.ElementTypes) == 0 {
			bug("collection %s has no element types", t.QualifiedName())
		}
		return env.resolveName(t.ElementTypes[0])

	case schema.ScalarType:
		name := t.QualifiedName()
		if !schema.IsTextLike(name) {
			return nil, &QueryError{Msg: "cannot index " + name.String()}
		}
		if name.Name == "json" {
			if !isIntLikeIndex(indexType) && !isStrIndex(indexType) {
				return nil, &QueryError{Msg: "cannot index json by " + indexTypeName(indexType)}
			}
			return t, nil
		}
		// str and bytes only accept an int index.
		if !isIntLikeIndex(indexType) {
			return nil, &QueryError{Msg: "cannot index " + name.String() + " by " + indexTypeName(indexType)}
		}
		return t, nil

	case schema.PseudoType:
		if t.Kind == schema.PseudoAnyType {
			return t, nil
		}
		return nil, &QueryError{Msg: "cannot index " + t.QualifiedName().String()}

	default:
		return nil, &QueryError{Msg: "cannot index " + operandType.QualifiedName().String()}
	}
}

func (env *Env) inferSubjectStmt(node any) (schema.Type, error) {
	switch n := node.(type) {
	case ir.UpdateStmt:
		return env.TypeOf(n.Subject)
	case ir.DeleteStmt:
		return env.TypeOf(n.Subject)
	default:
		bug("inferSubjectStmt called with unexpected node %T", node)
		panic("unreachable")
	}
}
