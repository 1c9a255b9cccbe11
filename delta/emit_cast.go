package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/codegen"
	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
)

// emitCast handles Create/Delete for schema.Cast subjects: when the
// cast body is written in source-language SQL, a backend function is
// generated for it and bound with CREATE CAST; built-in-to-built-in
// casts the backend already knows about skip the function and only
// register the CAST binding. Grounded on internal/diff/function.go's
// CREATE OR REPLACE FUNCTION rendering, generalized to the CAST/OPERATOR
// binding forms per spec.md §4.5 "Casts, operators".
func (disp *dispatcher) emitCast(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createCast(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteCast(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for cast", cmd.Kind)
	}
}

func (disp *dispatcher) createCast(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	var from, to schema.Name
	if v, ok := cmd.Field("from"); ok {
		from, _ = v.(schema.Name)
	}
	if v, ok := cmd.Field("to"); ok {
		to, _ = v.(schema.Name)
	}
	implicit := false
	if v, ok := cmd.Field("implicit"); ok {
		implicit, _ = v.(bool)
	}
	assignment := false
	if v, ok := cmd.Field("assignment"); ok {
		assignment, _ = v.(bool)
	}
	var bodyRef schema.ExprRef
	if v, ok := cmd.Field("body"); ok {
		if ref, ok := v.(schema.ExprRef); ok {
			bodyRef = ref
		}
	}

	c := schema.Cast{
		Base:       schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, []schema.Name{cmd.Subject.Name}, nil),
		From:       from,
		To:         to,
		Implicit:   implicit,
		Assignment: assignment,
		Body:       bodyRef,
	}
	next := sch.WithObject(c)

	fnName := castFuncName(from, to)
	if bodyRef.Text != "" {
		body := codegen.RenderBody(bodyRef, []schema.FunctionParam{{Name: "value", Type: from}})
		disp.plan.collect(
			fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s LANGUAGE sql IMMUTABLE AS $$\n%s\n$$;",
				fnName, pgColumnType(from), pgColumnType(to), body),
			fmt.Sprintf("create cast function for %s -> %s", from, to),
		)
	}
	as := "WITH FUNCTION " + fnName + "(" + pgColumnType(from) + ")"
	if implicit {
		as += " AS IMPLICIT"
	} else if assignment {
		as += " AS ASSIGNMENT"
	}
	disp.plan.collect(
		fmt.Sprintf("CREATE CAST (%s AS %s) %s;", pgColumnType(from), pgColumnType(to), as),
		fmt.Sprintf("register cast %s -> %s", from, to),
	)
	return next, nil
}

func castFuncName(from, to schema.Name) string {
	return dbops.QuoteIdent("cast_" + from.Name + "_to_" + to.Name)
}

func (disp *dispatcher) deleteCast(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	c, ok := obj.(schema.Cast)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a cast", cmd.Subject.Name)
	}
	disp.plan.collect(
		fmt.Sprintf("DROP CAST IF EXISTS (%s AS %s);", pgColumnType(c.From), pgColumnType(c.To)),
		fmt.Sprintf("drop cast %s -> %s", c.From, c.To),
	)
	if c.Body.Text != "" {
		disp.plan.collect(
			fmt.Sprintf("DROP FUNCTION IF EXISTS %s(%s);", castFuncName(c.From, c.To), pgColumnType(c.From)),
			fmt.Sprintf("drop cast function for %s -> %s", c.From, c.To),
		)
	}
	return sch.WithoutObject(c.ID(), cmd.IfUnused)
}
