package delta

import (
	"strings"
	"testing"

	"github.com/arcwell-db/arcql/schema"
)

func newObjectType(sch *schema.Schema, name string, bases ...string) schema.ObjectType {
	var baseNames []schema.Name
	for _, b := range bases {
		baseNames = append(baseNames, schema.NewName(b))
	}
	ancestors := append([]schema.Name(nil), baseNames...)
	ancestors = append(ancestors, schema.NewName(name))
	return schema.ObjectType{
		Base: schema.NewBase(schema.NewID(), sch.NextSeq(), schema.NewName(name), baseNames, ancestors, nil),
	}
}

// TestTriggerCoverage exercises §8's "Trigger coverage" property: a
// concrete object type referenced by an inbound Allow-policy link gets
// a CREATE TRIGGER op among its referential triggers.
func TestTriggerCoverage(t *testing.T) {
	sch := schema.NewSchema()
	target := newObjectType(sch, "Target")
	sch = sch.WithObject(target)
	source := newObjectType(sch, "Source")
	sch = sch.WithObject(source)

	link := schema.Pointer{
		Base:        schema.NewBase(schema.NewID(), sch.NextSeq(), schema.NewName("ref"), nil, nil, nil),
		Source:      source.QualifiedName(),
		Target:      target.QualifiedName(),
		IsLink:      true,
		Cardinality: schema.Cardinality{Upper: schema.UpperOne, Lower: schema.LowerOptional},
		OnDelete:    schema.Allow,
	}
	sch = sch.WithObject(link)

	ops := GenerateReferentialTriggers(&target, sch)

	var sawCreateTrigger bool
	for _, op := range ops {
		if strings.HasPrefix(op.SQL, "CREATE ") && strings.Contains(op.SQL, "TRIGGER") {
			sawCreateTrigger = true
		}
	}
	if !sawCreateTrigger {
		t.Fatalf("expected at least one CREATE TRIGGER op, got %d ops: %+v", len(ops), ops)
	}
}

// TestElideInheritedRestricts exercises §4.5's "Restrict-policy
// inherited links are elided": a Restrict-policy pointer declared on an
// ancestor and inherited onto a descendant must not produce two
// redundant EXISTS checks against the same target.
func TestElideInheritedRestricts(t *testing.T) {
	sch := schema.NewSchema()
	target := newObjectType(sch, "Target")
	sch = sch.WithObject(target)
	base := newObjectType(sch, "Base")
	sch = sch.WithObject(base)
	derived := newObjectType(sch, "Derived", "Base")
	sch = sch.WithObject(derived)

	baseLink := schema.Pointer{
		Base:     schema.NewBase(schema.NewID(), sch.NextSeq(), schema.NewName("ref"), nil, nil, nil),
		Source:   base.QualifiedName(),
		Target:   target.QualifiedName(),
		IsLink:   true,
		OnDelete: schema.Restrict,
	}
	sch = sch.WithObject(baseLink)
	derivedLink := schema.Pointer{
		Base:     schema.NewBase(schema.NewID(), sch.NextSeq(), schema.NewName("ref"), nil, nil, nil),
		Source:   derived.QualifiedName(),
		Target:   target.QualifiedName(),
		IsLink:   true,
		OnDelete: schema.Restrict,
	}
	sch = sch.WithObject(derivedLink)

	links := elideInheritedRestricts(inboundLinks(target.QualifiedName(), sch), sch)
	if len(links) != 1 {
		t.Fatalf("expected the derived-type's inherited Restrict link to be elided, got %d links", len(links))
	}
	if links[0].Source != base.QualifiedName() {
		t.Fatalf("expected the surviving link to be the one declared on Base, got source %v", links[0].Source)
	}
}
