package delta

import (
	"fmt"
	"strings"

	"github.com/arcwell-db/arcql/delta/codegen"
	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
)

// emitFunction handles Create/Alter/Delete for schema.Function subjects:
// the body is rendered from its compiled IR via codegen.RenderBody, and
// a function with an object-typed parameter additionally gets an
// ancestry-table dispatcher wrapped around the body per spec.md §4.5
// "Functions". Grounded on internal/diff/function.go's
// generateFunctionSQL CREATE OR REPLACE FUNCTION rendering, generalized
// from pass-through SQL bodies to compiled-IR bodies.
func (disp *dispatcher) emitFunction(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate, schema.CmdAlter:
		return disp.createOrReplaceFunction(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteFunction(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for function", cmd.Kind)
	}
}

func (disp *dispatcher) createOrReplaceFunction(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	var params []schema.FunctionParam
	if v, ok := cmd.Field("params"); ok {
		params, _ = v.([]schema.FunctionParam)
	}
	var returnType schema.Name
	if v, ok := cmd.Field("return_type"); ok {
		returnType, _ = v.(schema.Name)
	}
	returnsSet := false
	if v, ok := cmd.Field("returns_set"); ok {
		returnsSet, _ = v.(bool)
	}
	var bodyRef schema.ExprRef
	if v, ok := cmd.Field("body"); ok {
		if ref, ok := v.(schema.ExprRef); ok {
			bodyRef = ref
		}
	}
	volatility, _ := stringField(cmd, "volatility")

	fn := schema.Function{
		Base:       schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, []schema.Name{cmd.Subject.Name}, nil),
		Params:     params,
		ReturnType: returnType,
		ReturnsSet: returnsSet,
		Body:       bodyRef,
		Volatility: volatility,
	}
	next := sch.WithObject(fn)

	body := codegen.RenderBody(bodyRef, params)
	if fn.HasObjectOverload(next) {
		overloads := map[schema.Name]string{fn.QualifiedName(): body}
		body = codegen.DispatcherBody(objectParamPosition(params, next)+1, overloads, "object_ancestry")
	}

	disp.plan.collect(functionDDL(&fn, body, returnsSet), fmt.Sprintf("create or replace function %s", fn.QualifiedName()))
	return next, nil
}

func objectParamPosition(params []schema.FunctionParam, sch *schema.Schema) int {
	for i, p := range params {
		if t, ok := sch.ByName(p.Type); ok {
			if _, isObj := t.(schema.ObjectType); isObj {
				return i
			}
		}
	}
	return 0
}

func functionDDL(fn *schema.Function, body string, returnsSet bool) string {
	var b strings.Builder
	name := dbops.QualifyIdent(fn.QualifiedName().Module, fn.QualifiedName().Name)
	fmt.Fprintf(&b, "CREATE OR REPLACE FUNCTION %s(%s)\n", name, signature(fn.Params))
	ret := pgColumnType(fn.ReturnType)
	if returnsSet {
		ret = "SETOF " + ret
	}
	fmt.Fprintf(&b, "RETURNS %s\nLANGUAGE sql\n", ret)
	volatility := fn.Volatility
	if volatility == "" {
		volatility = "STABLE"
	}
	fmt.Fprintf(&b, "%s\nAS $$\n%s\n$$;", strings.ToUpper(volatility), body)
	return b.String()
}

func signature(params []schema.FunctionParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", dbops.QuoteIdent(p.Name), pgColumnType(p.Type))
	}
	return strings.Join(parts, ", ")
}

func (disp *dispatcher) deleteFunction(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	fn, ok := obj.(schema.Function)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a function", cmd.Subject.Name)
	}
	name := dbops.QualifyIdent(fn.QualifiedName().Module, fn.QualifiedName().Name)
	disp.plan.collect(
		fmt.Sprintf("DROP FUNCTION IF EXISTS %s(%s);", name, signature(fn.Params)),
		fmt.Sprintf("drop function %s", fn.QualifiedName()),
	)
	return sch.WithoutObject(fn.ID(), cmd.IfUnused)
}
