package schema

import "testing"

func objType(seq CreationSeq, name string, bases ...string) ObjectType {
	var baseNames []Name
	for _, b := range bases {
		baseNames = append(baseNames, NewName(b))
	}
	ancestors := append([]Name(nil), baseNames...)
	ancestors = append(ancestors, NewName(name))
	return ObjectType{
		Base: NewBase(NewID(), seq, NewName(name), baseNames, ancestors, nil),
	}
}

func TestSchemaByNameRoundTrip(t *testing.T) {
	s := NewSchema()
	obj := objType(1, "User")
	s = s.WithObject(obj)

	got, ok := s.ByName(NewName("User"))
	if !ok {
		t.Fatal("expected User to resolve")
	}
	if got.QualifiedName() != obj.QualifiedName() {
		t.Fatalf("got %v, want %v", got.QualifiedName(), obj.QualifiedName())
	}
}

func TestSchemaByNameModuleAlias(t *testing.T) {
	s := NewSchema()
	obj := ObjectType{Base: NewBase(NewID(), 1, NewQualName("app", "User"), nil, []Name{NewQualName("app", "User")}, nil)}
	s = s.WithObject(obj)
	s = s.WithModuleAlias("default", "app")

	if _, ok := s.ByName(NewName("User")); !ok {
		t.Fatal("expected unqualified lookup to resolve via module alias")
	}
}

func TestSchemaWithoutObjectBlocksReferencedTarget(t *testing.T) {
	s := NewSchema()
	target := objType(1, "Target")
	referrer := objType(2, "Referrer")
	s = s.WithObject(target).WithObject(referrer)
	s = s.WithReference(referrer.ID(), target.ID(), "base")

	if _, err := s.WithoutObject(target.ID(), false); err == nil {
		t.Fatal("expected referential integrity error")
	}

	ns, err := s.WithoutObject(target.ID(), true)
	if err != nil {
		t.Fatalf("ifUnused delete should not error: %v", err)
	}
	if _, ok := ns.ByID(target.ID()); !ok {
		t.Fatal("ifUnused delete on a referenced object should not have removed it")
	}
}

func TestSchemaWithoutObjectUnreferenced(t *testing.T) {
	s := NewSchema()
	target := objType(1, "Lonely")
	s = s.WithObject(target)

	ns, err := s.WithoutObject(target.ID(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ns.ByID(target.ID()); ok {
		t.Fatal("expected object to be removed")
	}
	if _, ok := s.ByID(target.ID()); !ok {
		t.Fatal("original snapshot must remain unmodified")
	}
}

func TestNearestCommonAncestors(t *testing.T) {
	s := NewSchema()
	base := objType(1, "Base")
	mid := objType(2, "Mid", "Base")
	a := objType(3, "A", "Mid", "Base")
	b := objType(4, "B", "Mid", "Base")
	s = s.WithObject(base).WithObject(mid).WithObject(a).WithObject(b)

	nca := s.NearestCommonAncestors([]Type{a, b})
	if len(nca) != 1 || nca[0].QualifiedName() != mid.QualifiedName() {
		t.Fatalf("expected [Mid], got %v", nca)
	}
}

func TestNearestCommonAncestorsSameType(t *testing.T) {
	s := NewSchema()
	a := objType(1, "A")
	s = s.WithObject(a)

	nca := s.NearestCommonAncestors([]Type{a, a})
	if len(nca) != 1 || nca[0].QualifiedName() != a.QualifiedName() {
		t.Fatalf("expected [A], got %v", nca)
	}
}

func TestParseName(t *testing.T) {
	n := ParseName("app::User")
	if n.Module != "app" || n.Name != "User" {
		t.Fatalf("got %+v", n)
	}
	bare := ParseName("User")
	if bare.Module != "default" || bare.Name != "User" {
		t.Fatalf("got %+v", bare)
	}
}
