package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcwell-db/arcql/schema"
)

// CheckCmd is a smoke-test entry point into package schema: it builds a
// small built-in inheritance hierarchy and asserts the two invariants
// §4.1 calls out as properties external tooling can rely on — that
// every object round-trips through ByName, and that
// NearestCommonAncestors is deterministic over repeated calls.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate schema invariants against a built-in demo hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		sch := demoInheritanceSchema()

		for _, obj := range sch.AllObjects() {
			got, ok := sch.ByName(obj.QualifiedName())
			if !ok || got.ID() != obj.ID() {
				return fmt.Errorf("check: %s failed ByName round-trip", obj.QualifiedName())
			}
		}

		a, _ := sch.ByName(schema.NewName("A"))
		b, _ := sch.ByName(schema.NewName("B"))
		first := sch.NearestCommonAncestors([]schema.Type{a.(schema.Type), b.(schema.Type)})
		second := sch.NearestCommonAncestors([]schema.Type{a.(schema.Type), b.(schema.Type)})
		if len(first) != len(second) || (len(first) > 0 && first[0].QualifiedName() != second[0].QualifiedName()) {
			return fmt.Errorf("check: NearestCommonAncestors is not deterministic across calls")
		}

		fmt.Println("OK: ByName round-trip and NearestCommonAncestors determinism hold")
		return nil
	},
}

func demoInheritanceSchema() *schema.Schema {
	sch := schema.NewSchema()
	base := objectType(sch, "Base")
	sch = sch.WithObject(base)
	mid := objectType(sch, "Mid", "Base")
	sch = sch.WithObject(mid)
	a := objectType(sch, "A", "Mid", "Base")
	sch = sch.WithObject(a)
	b := objectType(sch, "B", "Mid", "Base")
	sch = sch.WithObject(b)
	return sch
}

func objectType(sch *schema.Schema, name string, bases ...string) schema.ObjectType {
	var baseNames []schema.Name
	for _, base := range bases {
		baseNames = append(baseNames, schema.NewName(base))
	}
	ancestors := append([]schema.Name(nil), baseNames...)
	ancestors = append(ancestors, schema.NewName(name))
	return schema.ObjectType{
		Base: schema.NewBase(schema.NewID(), sch.NextSeq(), schema.NewName(name), baseNames, ancestors, nil),
	}
}
