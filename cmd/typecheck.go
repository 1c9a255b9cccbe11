package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcwell-db/arcql/infer"
	"github.com/arcwell-db/arcql/ir"
	"github.com/arcwell-db/arcql/schema"
)

// TypecheckCmd is a smoke-test entry point into package infer: since
// the source-language parser is a declared Non-goal (spec.md §1), this
// command builds two fixed integer constants of different width (int32
// and int64) in-process rather than compiling user text, and reports
// their inferred common type — exercising exactly the §8
// scenario 1 "Common scalar type" path from the command line.
var TypecheckCmd = &cobra.Command{
	Use:   "typecheck",
	Short: "Run type inference over a built-in demo expression",
	RunE: func(cmd *cobra.Command, args []string) error {
		sch, int32Type, int64Type := demoNumericSchema()
		arena := ir.NewArena()
		env := infer.NewEnv(sch, arena)

		lhs := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: int32(1), TypeName: int32Type.QualifiedName()}})
		rhs := arena.Alloc(&ir.Set{Expr: ir.Constant{Value: int64(2), TypeName: int64Type.QualifiedName()}})

		common, err := infer.CommonType(env, []ir.Handle{lhs, rhs})
		if err != nil {
			return fmt.Errorf("typecheck: %w", err)
		}
		fmt.Printf("common type of (int32, int64): %s\n", common.QualifiedName())
		return nil
	},
}

// demoNumericSchema builds a minimal schema containing only the two
// built-in scalar types the demo expression references.
func demoNumericSchema() (*schema.Schema, schema.ScalarType, schema.ScalarType) {
	sch := schema.NewSchema()
	i32name := schema.NewQualName("std", "int32")
	i64name := schema.NewQualName("std", "int64")
	i32 := schema.ScalarType{Base: schema.NewBase(schema.NewID(), sch.NextSeq(), i32name, nil, []schema.Name{i32name}, nil)}
	sch = sch.WithObject(i32)
	i64 := schema.ScalarType{Base: schema.NewBase(schema.NewID(), sch.NextSeq(), i64name, nil, []schema.Name{i64name}, nil)}
	sch = sch.WithObject(i64)
	return sch, i32, i64
}
