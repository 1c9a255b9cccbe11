package infer

import (
	"testing"

	"github.com/arcwell-db/arcql/ir"
	"github.com/arcwell-db/arcql/schema"
)

func builtinScalar(name string) schema.ScalarType {
	n := schema.NewQualName("std", name)
	return schema.ScalarType{Base: schema.NewBase(schema.NewID(), 1, n, nil, []schema.Name{n}, nil)}
}

func newTestSchema(t *testing.T, types ...schema.Type) *schema.Schema {
	t.Helper()
	sch := schema.NewSchema()
	for _, ty := range types {
		sch = sch.WithObject(ty)
	}
	return sch
}

func TestInferConstant(t *testing.T) {
	ir.ResetTypeRefCache()
	str := builtinScalar("str")
	sch := newTestSchema(t, str)
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	h := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: "hi", TypeName: str.QualifiedName()}})
	typ, err := env.TypeOf(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.QualifiedName() != str.QualifiedName() {
		t.Fatalf("got %v", typ.QualifiedName())
	}
}

func TestInferOpCallComparisonIsBool(t *testing.T) {
	ir.ResetTypeRefCache()
	sch := newTestSchema(t, builtinScalar("int64"))
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	a := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 1, TypeName: schema.NewQualName("std", "int64")}})
	b := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 2, TypeName: schema.NewQualName("std", "int64")}})
	h := arena.Alloc(&ir.Set{Expr: ir.OpCall{Op: schema.NewQualName("std", "="), Operands: []ir.Handle{a, b}}})

	typ, err := env.TypeOf(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.QualifiedName().Name != "bool" {
		t.Fatalf("expected bool, got %v", typ.QualifiedName())
	}
}

func TestCommonTypeAmendsEmptySet(t *testing.T) {
	ir.ResetTypeRefCache()
	sch := newTestSchema(t, builtinScalar("int64"))
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	known := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 3, TypeName: schema.NewQualName("std", "int64")}})
	empty := ir.NewEmptySet(arena, &ir.PathId{})

	typ, err := CommonType(env, []ir.Handle{known, empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.QualifiedName().Name != "int64" {
		t.Fatalf("got %v", typ.QualifiedName())
	}
	if arena.Get(empty).IsEmptySet() {
		t.Fatal("expected empty set to have been amended")
	}
}

func TestCommonTypeNumericPromotion(t *testing.T) {
	ir.ResetTypeRefCache()
	sch := newTestSchema(t, builtinScalar("int64"), builtinScalar("float64"))
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	a := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 1, TypeName: schema.NewQualName("std", "int64")}})
	b := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 1.5, TypeName: schema.NewQualName("std", "float64")}})

	typ, err := CommonType(env, []ir.Handle{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.QualifiedName().Name != "float64" {
		t.Fatalf("expected float64 to win promotion, got %v", typ.QualifiedName())
	}
}

func TestCommonTypeIncompatibleIsQueryError(t *testing.T) {
	ir.ResetTypeRefCache()
	sch := newTestSchema(t, builtinScalar("str"), builtinScalar("bool"))
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	a := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: "x", TypeName: schema.NewQualName("std", "str")}})
	b := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: true, TypeName: schema.NewQualName("std", "bool")}})

	_, err := CommonType(env, []ir.Handle{a, b})
	if err == nil {
		t.Fatal("expected a QueryError for incompatible scalar operands")
	}
	if _, ok := err.(*QueryError); !ok {
		t.Fatalf("expected *QueryError, got %T", err)
	}
}

func TestInferConfigStmtIsVoid(t *testing.T) {
	ir.ResetTypeRefCache()
	sch := newTestSchema(t)
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	h := arena.Alloc(&ir.Set{Expr: ir.ConfigStmt{Op: ir.ConfigSet, Name: schema.NewQualName("cfg", "listen_port")}})
	typ, err := env.TypeOf(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !schema.IsVoid(typ) {
		t.Fatalf("expected VoidType, got %v", typ)
	}
}

func TestInferIndexIndirectionOnArray(t *testing.T) {
	ir.ResetTypeRefCache()
	int64Type := builtinScalar("int64")
	sch := newTestSchema(t, int64Type)
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	e1 := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 1, TypeName: int64Type.QualifiedName()}})
	arr := arena.Alloc(&ir.Set{Expr: ir.ArrayConstructor{Elements: []ir.Handle{e1}}})
	idx := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 0, TypeName: int64Type.QualifiedName()}})
	h := arena.Alloc(&ir.Set{Expr: ir.IndexIndirection{Operand: arr, Index: idx}})

	typ, err := env.TypeOf(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.QualifiedName() != int64Type.QualifiedName() {
		t.Fatalf("got %v", typ.QualifiedName())
	}
}

func TestInferSliceIndirectionAmendsEmptySetBound(t *testing.T) {
	ir.ResetTypeRefCache()
	int32Type := builtinScalar("int32")
	int64Type := builtinScalar("int64")
	sch := newTestSchema(t, int32Type, int64Type)
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	e1 := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 1, TypeName: int32Type.QualifiedName()}})
	arr := arena.Alloc(&ir.Set{Expr: ir.ArrayConstructor{Elements: []ir.Handle{e1}}})
	start := ir.NewEmptySet(arena, &ir.PathId{})
	stop := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 5, TypeName: int64Type.QualifiedName()}})
	h := arena.Alloc(&ir.Set{Expr: ir.SliceIndirection{Operand: arr, Start: &start, Stop: &stop}})

	typ, err := env.TypeOf(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := typ.(schema.Collection); !ok {
		t.Fatalf("expected Array result type, got %T", typ)
	}
	if arena.Get(start).IsEmptySet() {
		t.Fatal("expected the empty start bound to have been amended")
	}
	if got := env.SetTypes[start].QualifiedName(); got.Name != "int64" {
		t.Fatalf("expected start bound amended to int64, got %v", got)
	}
}

func TestInferSliceIndirectionRejectsNonSliceableOperand(t *testing.T) {
	ir.ResetTypeRefCache()
	sch := newTestSchema(t, builtinScalar("int64"))
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	obj := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 1, TypeName: schema.NewQualName("std", "int64")}})
	stop := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: 5, TypeName: schema.NewQualName("std", "int64")}})
	h := arena.Alloc(&ir.Set{Expr: ir.SliceIndirection{Operand: obj, Stop: &stop}})

	_, err := env.TypeOf(h)
	if err == nil {
		t.Fatal("expected a QueryError for slicing a non-sliceable int64 operand")
	}
	if _, ok := err.(*QueryError); !ok {
		t.Fatalf("expected *QueryError, got %T", err)
	}
}

func TestInferIndexIndirectionOnJSON(t *testing.T) {
	ir.ResetTypeRefCache()
	jsonType := builtinScalar("json")
	strType := builtinScalar("str")
	sch := newTestSchema(t, jsonType, strType)
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	obj := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: "{}", TypeName: jsonType.QualifiedName()}})
	idx := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: "k", TypeName: strType.QualifiedName()}})
	h := arena.Alloc(&ir.Set{Expr: ir.IndexIndirection{Operand: obj, Index: idx}})

	typ, err := env.TypeOf(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.QualifiedName().Name != "json" {
		t.Fatalf("expected json, got %v", typ.QualifiedName())
	}
}

func TestInferIndexIndirectionOnBytesByStringFails(t *testing.T) {
	ir.ResetTypeRefCache()
	bytesType := builtinScalar("bytes")
	strType := builtinScalar("str")
	sch := newTestSchema(t, bytesType, strType)
	arena := ir.NewArena()
	env := NewEnv(sch, arena)

	obj := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: []byte("x"), TypeName: bytesType.QualifiedName()}})
	idx := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: "k", TypeName: strType.QualifiedName()}})
	h := arena.Alloc(&ir.Set{Expr: ir.IndexIndirection{Operand: obj, Index: idx}})

	_, err := env.TypeOf(h)
	if err == nil {
		t.Fatal("expected a QueryError for indexing bytes by a string")
	}
	if _, ok := err.(*QueryError); !ok {
		t.Fatalf("expected *QueryError, got %T", err)
	}
}
