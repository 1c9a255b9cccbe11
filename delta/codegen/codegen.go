// Package codegen renders compiled IR expression bodies into backend SQL
// text for DDL emission — function, operator, and cast bodies only. It
// is deliberately NOT a general query compiler (that stays a declared
// Non-goal): a function/operator/cast body is always a single
// already-type-checked expression attached to a schema.ExprRef, and the
// backend's own SQL function body accepts that text close to verbatim
// once its parameter references are rewritten to the backend's
// positional-argument form. Grounded on the expression-stringification
// half of internal/diff/function.go, which the teacher already treats
// as opaque pass-through text for a CREATE FUNCTION body.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arcwell-db/arcql/schema"
)

// RenderBody rewrites the positional parameter placeholders
// ($paramName, the source language's own parameter-reference syntax) in
// expr's compiled text into the backend's $1, $2, ... positional form,
// in declaration order of params.
func RenderBody(expr schema.ExprRef, params []schema.FunctionParam) string {
	body := expr.Text
	for i, p := range params {
		placeholder := "$" + p.Name
		body = strings.ReplaceAll(body, placeholder, fmt.Sprintf("$%d", i+1))
	}
	return body
}

// DispatcherBody generates a CASE-on-ancestry-table ancestor dispatcher
// for a function with an object-typed overload parameter, per spec.md
// §4.5 "Functions": walk the argument's runtime type id through the
// ancestry table and branch to the concrete implementation registered
// for the nearest matching overload.
func DispatcherBody(paramPos int, overloads map[schema.Name]string, ancestryTable string) string {
	// Map iteration order is random in Go; sort by qualified name so the
	// generated body — and therefore the DDL the delta dispatcher emits
	// — is deterministic across runs for the same schema.
	names := make([]schema.Name, 0, len(overloads))
	for n := range overloads {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })

	var b strings.Builder
	fmt.Fprintf(&b, "DECLARE\n  __tid uuid;\nBEGIN\n  __tid := %s;\n", objectTypeIDExpr(paramPos))
	for i, typeName := range names {
		kw := "ELSIF"
		if i == 0 {
			kw = "IF"
		}
		fmt.Fprintf(&b, "  %s __tid IN (SELECT descendant_id FROM %s WHERE ancestor = %s) THEN\n    RETURN %s;\n",
			kw, ancestryTable, quoteTypeName(typeName), overloads[typeName])
	}
	b.WriteString("  END IF;\n  RAISE EXCEPTION 'no matching overload for runtime type %', __tid;\nEND;\n")
	return b.String()
}

func objectTypeIDExpr(paramPos int) string {
	return fmt.Sprintf("($%d).id", paramPos)
}

func quoteTypeName(n schema.Name) string {
	return "'" + n.String() + "'"
}
