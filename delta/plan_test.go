package delta

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arcwell-db/arcql/schema"
)

// snapshot captures everything go-cmp needs to assert two Schema values
// are identical "by value" (§8 "Idempotent delta application"),
// without reaching into Schema's unexported map fields directly —
// comparing the exported Object set is sufficient since every mutator
// in package schema goes through the single clone() choke point.
func snapshot(sch *schema.Schema) []schema.Object {
	objs := sch.AllObjects()
	sort.Slice(objs, func(i, j int) bool {
		return objs[i].QualifiedName().Less(objs[j].QualifiedName())
	})
	return objs
}

// TestIdempotentNoOpAlter exercises §8's "Idempotent delta application"
// property: dispatching an Alter command with an empty field-update map
// against an object type must yield a schema snapshot identical, by
// value, to the one it started from.
func TestIdempotentNoOpAlter(t *testing.T) {
	sch := schema.NewSchema()
	id := schema.NewID()
	name := schema.NewName("User")
	ot := schema.ObjectType{
		Base: schema.NewBase(id, sch.NextSeq(), name, nil, []schema.Name{name}, nil),
	}
	sch = sch.WithObject(ot)

	before := snapshot(sch)

	cmd := &schema.Command{
		Kind:    schema.CmdAlter,
		Subject: schema.SubjectRef{Kind: schema.KindObjectType, ID: id, Name: name},
	}
	d := &schema.Delta{Commands: []*schema.Command{cmd}}

	_, next, err := Dispatch(d, sch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := snapshot(next)
	if diff := cmp.Diff(before, after, cmp.AllowUnexported(schema.Base{})); diff != "" {
		t.Fatalf("no-op alter changed the schema snapshot (-before +after):\n%s", diff)
	}
}
