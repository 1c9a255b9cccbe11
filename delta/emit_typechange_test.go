package delta

import (
	"strings"
	"testing"

	"github.com/arcwell-db/arcql/schema"
)

// TestEmitTypeChangeDropsAndRecreatesReferencingConstraint exercises
// spec.md §4.5 "Pointer type change": a CHECK constraint on the pointer
// being retyped must be dropped before the ALTER COLUMN TYPE and
// recreated after it, in that order.
func TestEmitTypeChangeDropsAndRecreatesReferencingConstraint(t *testing.T) {
	sch := schema.NewSchema()
	user := schema.ObjectType{Base: schema.NewBase(schema.NewID(), sch.NextSeq(), schema.NewName("User"), nil, []schema.Name{schema.NewName("User")}, nil)}
	sch = sch.WithObject(user)

	ptrName := schema.NewName("age")
	ptr := schema.Pointer{
		Base:        schema.NewBase(schema.NewID(), sch.NextSeq(), ptrName, nil, []schema.Name{ptrName}, nil),
		Source:      user.QualifiedName(),
		Target:      schema.NewQualName("std", "int32"),
		Cardinality: schema.Cardinality{Upper: schema.UpperOne, Lower: schema.LowerOptional},
	}
	sch = sch.WithObject(ptr)
	sch = sch.WithReference(ptr.ID(), user.ID(), "source")
	sch = sch.WithReference(ptr.ID(), mustID(sch, ptr.Target), "target")

	constraintName := schema.NewName("age_positive")
	c := schema.Constraint{
		Base:    schema.NewBase(schema.NewID(), sch.NextSeq(), constraintName, nil, []schema.Name{constraintName}, nil),
		Subject: ptrName,
		Expr:    schema.ExprRef{Text: "age >= 0"},
	}
	sch = sch.WithObject(c)
	sch = sch.WithReference(c.ID(), ptr.ID(), "subject")

	cmd := &schema.Command{
		Kind:    schema.CmdAlter,
		Subject: schema.SubjectRef{Kind: schema.KindPointer, ID: ptr.ID(), Name: ptrName},
		Updates: []schema.FieldUpdate{{Field: "target", Value: schema.NewQualName("std", "int64")}},
	}
	d := &schema.Delta{Commands: []*schema.Command{cmd}}

	plan, _, err := Dispatch(d, sch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sql []string
	for _, op := range plan.Ops() {
		sql = append(sql, op.SQL)
	}

	dropIdx, typeIdx, createIdx := -1, -1, -1
	for i, s := range sql {
		switch {
		case strings.Contains(s, "DROP CONSTRAINT"):
			dropIdx = i
		case strings.Contains(s, "ALTER COLUMN") && strings.Contains(s, "TYPE"):
			typeIdx = i
		case strings.Contains(s, "ADD CONSTRAINT"):
			createIdx = i
		}
	}

	if dropIdx == -1 || typeIdx == -1 || createIdx == -1 {
		t.Fatalf("expected drop, type-change, and recreate statements, got %+v", sql)
	}
	if !(dropIdx < typeIdx && typeIdx < createIdx) {
		t.Fatalf("expected drop before type change before recreate, got order %+v", sql)
	}
	if !strings.Contains(sql[createIdx], "CHECK (age >= 0)") {
		t.Fatalf("expected the recreated constraint to keep its CHECK expression, got %q", sql[createIdx])
	}
}
