package ir

import (
	"testing"

	"github.com/arcwell-db/arcql/schema"
)

func TestPathIdEqual(t *testing.T) {
	a := &PathId{Steps: []PathStep{{TypeOrPointer: schema.NewName("name"), Dir: schema.DirOutbound}}}
	b := &PathId{Steps: []PathStep{{TypeOrPointer: schema.NewName("name"), Dir: schema.DirOutbound}}}
	if !a.Equal(b) {
		t.Fatal("expected structurally identical PathIds to be equal")
	}
	c := a.Extend(PathStep{TypeOrPointer: schema.NewName("friends"), Dir: schema.DirOutbound})
	if a.Equal(c) {
		t.Fatal("extended path must not equal its prefix")
	}
	if len(a.Steps) != 1 {
		t.Fatal("Extend must not mutate the receiver")
	}
}

func TestPathIdWithNamespace(t *testing.T) {
	p := &PathId{Steps: []PathStep{{TypeOrPointer: schema.NewName("x"), Namespace: "orig"}}}
	d := p.WithNamespace("__derived__")
	if d.Steps[0].Namespace != "__derived__" {
		t.Fatalf("got %q", d.Steps[0].Namespace)
	}
	if p.Steps[0].Namespace != "orig" {
		t.Fatal("WithNamespace must not mutate the receiver")
	}
}

func TestTypeRefHashConsing(t *testing.T) {
	ResetTypeRefCache()
	typ := schema.ScalarType{Base: schema.NewBase(schema.NewID(), 1, schema.NewName("str"), nil, nil, nil)}
	r1 := NewTypeRef(typ)
	r2 := NewTypeRef(typ)
	if r1 != r2 {
		t.Fatal("expected the same schema.ID to hash-cons to the identical *TypeRef")
	}
}

func TestArenaReplace(t *testing.T) {
	a := NewArena()
	h := NewEmptySet(a, &PathId{})
	if !a.Get(h).IsEmptySet() {
		t.Fatal("freshly allocated set should be empty")
	}
	ResetTypeRefCache()
	typ := schema.ScalarType{Base: schema.NewBase(schema.NewID(), 1, schema.NewName("int64"), nil, nil, nil)}
	AmendEmptySet(a, h, NewTypeRef(typ))
	if a.Get(h).IsEmptySet() {
		t.Fatal("amended set should no longer be empty")
	}
	if len(a.Get(h).PathId.Steps) != 0 {
		t.Fatalf("expected derived path to carry no steps, got %v", a.Get(h).PathId.Steps)
	}
}

func TestExprBoxJSONRoundTripDropsLazyFields(t *testing.T) {
	box := NewExprBox(".name")
	box.Compiled = &Set{}
	data, err := box.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored ExprBox
	if err := restored.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Text != ".name" {
		t.Fatalf("got text %q", restored.Text)
	}
	if restored.Compiled != nil {
		t.Fatal("Compiled must not survive a round trip")
	}
}
