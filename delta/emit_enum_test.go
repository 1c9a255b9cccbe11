package delta

import (
	"strings"
	"testing"

	"github.com/arcwell-db/arcql/schema"
)

func newEnum(sch *schema.Schema, name string, values []string) schema.ScalarType {
	n := schema.NewName(name)
	return schema.ScalarType{
		Base:   schema.NewBase(schema.NewID(), sch.NextSeq(), n, nil, []schema.Name{n}, nil),
		Values: values,
	}
}

func alterEnumOps(t *testing.T, sch *schema.Schema, old schema.ScalarType, newValues []string) []string {
	t.Helper()
	cmd := &schema.Command{
		Kind:    schema.CmdAlter,
		Subject: schema.SubjectRef{Kind: schema.KindScalarType, ID: old.ID(), Name: old.QualifiedName()},
		Updates: []schema.FieldUpdate{{Field: "values", Value: newValues}},
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
	return sql
}

// TestEnumInsertBeforeExistingValue exercises §8 scenario 6: adding a
// value B before an existing value C to enum {A,C} emits a single
// ALTER TYPE ... ADD VALUE 'B' BEFORE 'C', with no drop/recreate.
func TestEnumInsertBeforeExistingValue(t *testing.T) {
	sch := schema.NewSchema()
	old := newEnum(sch, "Status", []string{"A", "C"})
	sch = sch.WithObject(old)

	ops := alterEnumOps(t, sch, old, []string{"A", "B", "C"})

	if len(ops) != 1 {
		t.Fatalf("expected exactly one op, got %d: %+v", len(ops), ops)
	}
	want := "ALTER TYPE " + `"default"."Status"` + " ADD VALUE 'B' BEFORE 'C';"
	if ops[0] != want {
		t.Fatalf("got %q, want %q", ops[0], want)
	}
	for _, op := range ops {
		if strings.Contains(op, "DROP TYPE") {
			t.Fatalf("expected no drop for a pure insertion, got %q", op)
		}
	}
}

// TestEnumTrailingAppend exercises the plain-append path: every new
// value lands after the one before it, still with no drop.
func TestEnumTrailingAppend(t *testing.T) {
	sch := schema.NewSchema()
	old := newEnum(sch, "Status", []string{"A"})
	sch = sch.WithObject(old)

	ops := alterEnumOps(t, sch, old, []string{"A", "B", "C"})

	if len(ops) != 2 {
		t.Fatalf("expected two ops, got %d: %+v", len(ops), ops)
	}
	if !strings.Contains(ops[0], "ADD VALUE 'B' AFTER 'A'") {
		t.Fatalf("expected B appended after A, got %q", ops[0])
	}
	if !strings.Contains(ops[1], "ADD VALUE 'C' AFTER 'B'") {
		t.Fatalf("expected C appended after B, got %q", ops[1])
	}
}

// TestEnumReorderTriggersRebuild exercises §8 scenario 6's second half:
// replacing {A,C} with {C,A} is a reorder, not an append, so it must
// take the drop-and-recreate rebuild path.
func TestEnumReorderTriggersRebuild(t *testing.T) {
	sch := schema.NewSchema()
	old := newEnum(sch, "Status", []string{"A", "C"})
	sch = sch.WithObject(old)

	ops := alterEnumOps(t, sch, old, []string{"C", "A"})

	var sawDrop, sawRecreate bool
	for _, op := range ops {
		if strings.HasPrefix(op, "DROP TYPE") {
			sawDrop = true
		}
		if strings.Contains(op, "CREATE TYPE") {
			sawRecreate = true
		}
	}
	if !sawDrop || !sawRecreate {
		t.Fatalf("expected a drop+recreate rebuild for a reordered enum, got %+v", ops)
	}
}

func TestIsAppendOnly(t *testing.T) {
	cases := []struct {
		name        string
		old, newVal []string
		want        bool
	}{
		{"pure append", []string{"A"}, []string{"A", "B"}, true},
		{"insert before", []string{"A", "C"}, []string{"A", "B", "C"}, true},
		{"insert at front", []string{"A"}, []string{"X", "A"}, true},
		{"reorder", []string{"A", "C"}, []string{"C", "A"}, false},
		{"removal", []string{"A", "C"}, []string{"A"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isAppendOnly(c.old, c.newVal); got != c.want {
				t.Fatalf("isAppendOnly(%v, %v) = %v, want %v", c.old, c.newVal, got, c.want)
			}
		})
	}
}
