package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/schemamech"
	"github.com/arcwell-db/arcql/schema"
)

// emitConstraint handles Create/Delete for schema.Constraint subjects,
// delegating the actual DDL rendering to package schemamech. Alter is
// implemented as drop-then-recreate. emit_typechange.go's
// referencingConstraints/constraintKindOf reuse the same subject
// referrer index (registered below via WithReference) to drop and
// recreate constraints around a pointer's type change. Grounded on
// internal/diff/constraint.go's add/drop pairing.
func (disp *dispatcher) emitConstraint(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createConstraint(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteConstraint(cmd, sch)
	case schema.CmdAlter:
		next, err := disp.deleteConstraint(cmd, sch)
		if err != nil {
			return nil, err
		}
		return disp.createConstraint(cmd, next)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for constraint", cmd.Kind)
	}
}

func (disp *dispatcher) createConstraint(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	var subject schema.Name
	if v, ok := cmd.Field("subject"); ok {
		subject, _ = v.(schema.Name)
	}
	var exprRef schema.ExprRef
	if v, ok := cmd.Field("expr"); ok {
		if ref, ok := v.(schema.ExprRef); ok {
			exprRef = ref
		}
	}
	delegated := false
	if v, ok := cmd.Field("delegated"); ok {
		delegated, _ = v.(bool)
	}
	kind := schemamech.KindCheck
	if v, ok := cmd.Field("unique"); ok {
		if u, _ := v.(bool); u {
			kind = schemamech.KindUnique
		}
	}

	c := schema.Constraint{
		Base:      schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, []schema.Name{cmd.Subject.Name}, nil),
		Subject:   subject,
		Expr:      exprRef,
		Delegated: delegated,
	}
	next := sch.WithObject(c)
	next = next.WithReference(c.ID(), mustID(next, subject), "subject")

	table, column, err := schemamech.ResolveSubjectTable(subject, next)
	if err != nil {
		return nil, err
	}
	disp.plan.collect(
		schemamech.CreateConstraintSQL(&c, table, column, kind),
		fmt.Sprintf("create constraint %s on %s", c.QualifiedName(), subject),
	)
	disp.markTouched(subject)
	return next, nil
}

func (disp *dispatcher) deleteConstraint(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	c, ok := obj.(schema.Constraint)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a constraint", cmd.Subject.Name)
	}
	table, _, err := schemamech.ResolveSubjectTable(c.Subject, sch)
	if err != nil {
		return nil, err
	}
	disp.plan.collect(schemamech.DropConstraintSQL(&c, table), fmt.Sprintf("drop constraint %s", c.QualifiedName()))
	next, err := sch.WithoutObject(c.ID(), cmd.IfUnused)
	if err != nil {
		return nil, err
	}
	disp.markTouched(c.Subject)
	return next, nil
}
