package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/codegen"
	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
)

// emitOperator handles Create/Delete for schema.Operator subjects: a
// backing function is generated from the compiled body, then bound via
// CREATE OPERATOR with the appropriate LEFTARG/RIGHTARG depending on
// Kind. Grounded on internal/diff/function.go's function-body
// rendering, generalized to the CREATE OPERATOR binding form per
// spec.md §4.5 "Casts, operators".
func (disp *dispatcher) emitOperator(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createOperator(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteOperator(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for operator", cmd.Kind)
	}
}

func (disp *dispatcher) createOperator(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	kind, _ := stringField(cmd, "kind")
	var params []schema.FunctionParam
	if v, ok := cmd.Field("params"); ok {
		params, _ = v.([]schema.FunctionParam)
	}
	var returnType schema.Name
	if v, ok := cmd.Field("return_type"); ok {
		returnType, _ = v.(schema.Name)
	}
	var bodyRef schema.ExprRef
	if v, ok := cmd.Field("body"); ok {
		if ref, ok := v.(schema.ExprRef); ok {
			bodyRef = ref
		}
	}

	op := schema.Operator{
		Base:       schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, []schema.Name{cmd.Subject.Name}, nil),
		Kind:       kind,
		Params:     params,
		ReturnType: returnType,
		Body:       bodyRef,
	}
	next := sch.WithObject(op)

	fnName := dbops.QuoteIdent("op_" + op.QualifiedName().Name)
	body := codegen.RenderBody(bodyRef, params)
	disp.plan.collect(
		fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s LANGUAGE sql IMMUTABLE AS $$\n%s\n$$;",
			fnName, signature(params), pgColumnType(returnType), body),
		fmt.Sprintf("create operator function for %s", op.QualifiedName()),
	)

	symbol := operatorSymbol(op.QualifiedName().Name)
	var argClause string
	switch kind {
	case "infix":
		argClause = fmt.Sprintf("LEFTARG = %s, RIGHTARG = %s", pgColumnType(params[0].Type), pgColumnType(params[1].Type))
	case "prefix":
		argClause = fmt.Sprintf("RIGHTARG = %s", pgColumnType(params[0].Type))
	case "postfix":
		argClause = fmt.Sprintf("LEFTARG = %s", pgColumnType(params[0].Type))
	default:
		argClause = fmt.Sprintf("LEFTARG = %s, RIGHTARG = %s", pgColumnType(params[0].Type), pgColumnType(params[1].Type))
	}
	disp.plan.collect(
		fmt.Sprintf("CREATE OPERATOR %s (PROCEDURE = %s, %s);", symbol, fnName, argClause),
		fmt.Sprintf("register operator %s", op.QualifiedName()),
	)
	return next, nil
}

// operatorSymbol maps a declared operator name to a custom Postgres
// operator symbol built only from characters Postgres allows in a
// custom operator name, so a source-language operator can never
// collide with a backend built-in.
func operatorSymbol(name string) string {
	return "%" + name + "%"
}

func (disp *dispatcher) deleteOperator(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	op, ok := obj.(schema.Operator)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not an operator", cmd.Subject.Name)
	}
	symbol := operatorSymbol(op.QualifiedName().Name)
	var argClause string
	switch op.Kind {
	case "infix":
		argClause = fmt.Sprintf("%s, %s", pgColumnType(op.Params[0].Type), pgColumnType(op.Params[1].Type))
	case "prefix":
		argClause = fmt.Sprintf("NONE, %s", pgColumnType(op.Params[0].Type))
	case "postfix":
		argClause = fmt.Sprintf("%s, NONE", pgColumnType(op.Params[0].Type))
	default:
		argClause = fmt.Sprintf("%s, %s", pgColumnType(op.Params[0].Type), pgColumnType(op.Params[1].Type))
	}
	disp.plan.collect(
		fmt.Sprintf("DROP OPERATOR IF EXISTS %s (%s);", symbol, argClause),
		fmt.Sprintf("drop operator %s", op.QualifiedName()),
	)
	fnName := dbops.QuoteIdent("op_" + op.QualifiedName().Name)
	disp.plan.collect(
		fmt.Sprintf("DROP FUNCTION IF EXISTS %s(%s);", fnName, signature(op.Params)),
		fmt.Sprintf("drop operator function for %s", op.QualifiedName()),
	)
	return sch.WithoutObject(op.ID(), cmd.IfUnused)
}
