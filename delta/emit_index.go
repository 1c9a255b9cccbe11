package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/delta/schemamech"
	"github.com/arcwell-db/arcql/schema"
)

// emitIndex handles Create/Delete for schema.Index subjects, delegating
// DDL rendering to package schemamech. Grounded on
// internal/diff/index.go's create/drop pairing.
func (disp *dispatcher) emitIndex(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createIndex(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteIndex(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for index", cmd.Kind)
	}
}

func (disp *dispatcher) createIndex(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	var subject schema.Name
	if v, ok := cmd.Field("subject"); ok {
		subject, _ = v.(schema.Name)
	}
	var exprRefs []schema.ExprRef
	if v, ok := cmd.Field("exprs"); ok {
		exprRefs, _ = v.([]schema.ExprRef)
	}
	using, _ := stringField(cmd, "using")

	idx := schema.Index{
		Base:    schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, []schema.Name{cmd.Subject.Name}, nil),
		Subject: subject,
		Exprs:   exprRefs,
		Using:   using,
	}
	next := sch.WithObject(idx)
	next = next.WithReference(idx.ID(), mustID(next, subject), "subject")

	table, column, err := schemamech.ResolveSubjectTable(subject, next)
	if err != nil {
		return nil, err
	}
	exprs := make([]string, 0, len(exprRefs))
	for _, e := range exprRefs {
		if e.Text != "" {
			exprs = append(exprs, e.Text)
		}
	}
	if len(exprs) == 0 && column != "" {
		exprs = []string{dbops.QuoteIdent(column)}
	}
	disp.plan.collect(
		schemamech.CreateIndexSQL(&idx, table, exprs),
		fmt.Sprintf("create index %s on %s", idx.QualifiedName(), subject),
	)
	disp.markTouched(subject)
	return next, nil
}

func (disp *dispatcher) deleteIndex(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	idx, ok := obj.(schema.Index)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not an index", cmd.Subject.Name)
	}
	table, _, err := schemamech.ResolveSubjectTable(idx.Subject, sch)
	if err != nil {
		return nil, err
	}
	disp.plan.collect(schemamech.DropIndexSQL(&idx, table), fmt.Sprintf("drop index %s", idx.QualifiedName()))
	next, err := sch.WithoutObject(idx.ID(), cmd.IfUnused)
	if err != nil {
		return nil, err
	}
	disp.markTouched(idx.Subject)
	return next, nil
}
