package views

import (
	"strings"
	"testing"

	"github.com/arcwell-db/arcql/schema"
)

func mkType(name string, seq schema.CreationSeq, bases ...string) schema.ObjectType {
	var baseNames []schema.Name
	for _, b := range bases {
		baseNames = append(baseNames, schema.NewName(b))
	}
	ancestors := append([]schema.Name(nil), baseNames...)
	ancestors = append(ancestors, schema.NewName(name))
	return schema.ObjectType{
		Base: schema.NewBase(schema.NewID(), seq, schema.NewName(name), baseNames, ancestors, nil),
	}
}

func withPointer(sch *schema.Schema, owner schema.ObjectType, ptrName string) (*schema.Schema, schema.ObjectType) {
	p := schema.Pointer{
		Base:        schema.NewBase(schema.NewID(), owner.CreationSeq()+100, schema.NewName(ptrName), nil, nil, nil),
		Source:      owner.QualifiedName(),
		Target:      schema.NewQualName("std", "str"),
		Cardinality: schema.Cardinality{Upper: schema.UpperOne, Lower: schema.LowerOptional},
	}
	sch = sch.WithObject(p)
	owner.Pointers = append(owner.Pointers, p.QualifiedName())
	sch = sch.WithObject(owner)
	return sch, owner
}

func TestManagerCreateUnionsDescendants(t *testing.T) {
	sch := schema.NewSchema()
	base := mkType("Animal", 1)
	sch = sch.WithObject(base)
	sch, base = withPointer(sch, base, "name")

	dog := mkType("Dog", 2, "Animal")
	sch = sch.WithObject(dog)

	m := NewManager()
	ops := m.Create(&base, sch, nil, nil)
	if len(ops) != 1 {
		t.Fatalf("expected a single CREATE VIEW op, got %d", len(ops))
	}
	if !strings.Contains(ops[0].SQL, "UNION ALL") {
		t.Fatalf("expected UNION ALL of descendants, got: %s", ops[0].SQL)
	}
	if !strings.Contains(ops[0].SQL, `"Dog"`) {
		t.Fatalf("expected Dog's table referenced, got: %s", ops[0].SQL)
	}
}

func TestManagerAlterUsesReplaceWhenColumnsAppendOnly(t *testing.T) {
	sch := schema.NewSchema()
	base := mkType("Animal", 1)
	sch = sch.WithObject(base)
	sch, oldBase := withPointer(sch, base, "name")

	sch, newBase := withPointer(sch, oldBase, "age")

	m := NewManager()
	ops := m.Alter(&oldBase, &newBase, sch)
	if len(ops) != 1 || !strings.Contains(ops[0].SQL, "CREATE OR REPLACE") {
		t.Fatalf("expected a single CREATE OR REPLACE op, got %+v", ops)
	}
}

func TestManagerAlterDropsAndRecreatesWhenColumnsRemoved(t *testing.T) {
	sch := schema.NewSchema()
	base := mkType("Animal", 1)
	sch = sch.WithObject(base)
	sch, oldBase := withPointer(sch, base, "name")
	sch, oldBase = withPointer(sch, oldBase, "age")

	// newBase drops "age" relative to oldBase.
	newBase := oldBase
	newBase.Pointers = []schema.Name{schema.NewName("name")}

	m := NewManager()
	ops := m.Alter(&oldBase, &newBase, sch)
	if len(ops) != 2 {
		t.Fatalf("expected drop+create, got %d ops", len(ops))
	}
	if !strings.Contains(ops[0].SQL, "DROP VIEW") {
		t.Fatalf("expected first op to drop the view, got: %s", ops[0].SQL)
	}
}

func TestManagerCascadeSkipsUnrelatedTypes(t *testing.T) {
	sch := schema.NewSchema()
	base := mkType("Animal", 1)
	other := mkType("Plant", 1)
	sch = sch.WithObject(base).WithObject(other)

	m := NewManager()
	ops := m.Cascade([]schema.Name{schema.NewName("Animal")}, sch)
	if len(ops) != 0 {
		t.Fatalf("expected no cascaded ops for a type with no ancestors, got %d", len(ops))
	}
}
