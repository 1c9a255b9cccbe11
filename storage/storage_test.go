package storage

import (
	"testing"

	"github.com/arcwell-db/arcql/schema"
)

func mkObjType(name string) schema.ObjectType {
	n := schema.NewName(name)
	return schema.ObjectType{Base: schema.NewBase(schema.NewID(), 1, n, nil, []schema.Name{n}, nil)}
}

func TestResolveSourceInlineScalarProperty(t *testing.T) {
	sch := schema.NewSchema()
	user := mkObjType("User")
	sch = sch.WithObject(user)

	ptr := &schema.Pointer{
		Base:        schema.NewBase(schema.NewID(), 2, schema.NewName("name"), nil, nil, nil),
		Source:      user.QualifiedName(),
		Target:      schema.NewQualName("std", "str"),
		Cardinality: schema.Cardinality{Upper: schema.UpperOne, Lower: schema.LowerRequired},
		IsLink:      false,
	}

	info, err := Resolve(ptr, sch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Kind != SourceInline {
		t.Fatalf("expected source-inline, got %v", info.Kind)
	}
	if info.Table != user.QualifiedName() {
		t.Fatalf("expected table %v, got %v", user.QualifiedName(), info.Table)
	}
	if info.Column != "name" {
		t.Fatalf("expected column 'name', got %q", info.Column)
	}
}

func TestResolveMultiLinkUsesLinkTable(t *testing.T) {
	sch := schema.NewSchema()
	user := mkObjType("User")
	sch = sch.WithObject(user)

	ptr := &schema.Pointer{
		Base:        schema.NewBase(schema.NewID(), 2, schema.NewName("friends"), nil, nil, nil),
		Source:      user.QualifiedName(),
		Target:      user.QualifiedName(),
		Cardinality: schema.Cardinality{Upper: schema.UpperMany, Lower: schema.LowerOptional},
		IsLink:      true,
	}

	info, err := Resolve(ptr, sch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Kind != LinkTable {
		t.Fatalf("expected link-table, got %v", info.Kind)
	}
}

func TestResolveSingleLinkWithPropertiesUsesLinkTable(t *testing.T) {
	sch := schema.NewSchema()
	user := mkObjType("User")
	sch = sch.WithObject(user)

	ptr := &schema.Pointer{
		Base:           schema.NewBase(schema.NewID(), 2, schema.NewName("manager"), nil, nil, nil),
		Source:         user.QualifiedName(),
		Target:         user.QualifiedName(),
		Cardinality:    schema.Cardinality{Upper: schema.UpperOne, Lower: schema.LowerOptional},
		IsLink:         true,
		LinkProperties: []schema.Name{schema.NewName("since")},
	}

	info, err := Resolve(ptr, sch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Kind != LinkTable {
		t.Fatalf("expected link-table for a link with link properties, got %v", info.Kind)
	}
}

func TestResolveComputableHasNoStorage(t *testing.T) {
	ref := schema.ExprRef{Text: ".a + .b"}
	ptr := &schema.Pointer{
		Base:       schema.NewBase(schema.NewID(), 1, schema.NewName("total"), nil, nil, nil),
		Computable: &ref,
	}
	if HasStorage(ptr) {
		t.Fatal("expected a computable pointer to report no storage")
	}
	if _, err := Resolve(ptr, schema.NewSchema()); err == nil {
		t.Fatal("expected Resolve to error on a computable pointer")
	}
}
