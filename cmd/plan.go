package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcwell-db/arcql/delta"
	"github.com/arcwell-db/arcql/schema"
)

// PlanCmd is a smoke-test entry point into package delta: it dispatches
// one fixed demo delta — creating an object type — against an empty
// schema and prints the resulting ordered backend operations, the way
// a real "plan" command would print a migration's DDL for review
// before apply.
var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dispatch a built-in demo delta and print the resulting backend ops",
	RunE: func(cmd *cobra.Command, args []string) error {
		sch := schema.NewSchema()
		id := schema.NewID()
		name := schema.NewName("User")

		create := &schema.Command{
			Kind:    schema.CmdCreate,
			Subject: schema.SubjectRef{Kind: schema.KindObjectType, ID: id, Name: name},
		}
		d := &schema.Delta{Commands: []*schema.Command{create}}

		plan, _, err := delta.Dispatch(d, sch)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}
		if len(plan.Ops()) == 0 {
			fmt.Println("-- no operations")
			return nil
		}
		for _, op := range plan.Ops() {
			fmt.Printf("-- %s\n%s\n", op.Description, op.SQL)
		}
		return nil
	},
}
