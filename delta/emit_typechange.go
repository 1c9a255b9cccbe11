package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/delta/schemamech"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// emitTypeChange is the hardest migration path (spec.md §4.5 "Pointer
// type change"): constraints referencing the pointer are dropped,
// values are converted through a USING clause (materializing into a
// temporary column first when the pointer is multi, since ALTER …
// TYPE … USING cannot run against a link table row-by-row the same
// way), and constraints are recreated afterward. Multi pointers delete
// rows whose converted value is NULL, raising when the pointer is
// required. Grounded on internal/diff/column.go's
// needsUsingClause/USING-clause dance, generalized from a single
// Postgres column type change to the compiler's schema-level pointer
// type change.
func (disp *dispatcher) emitTypeChange(old, updated *schema.Pointer, sch *schema.Schema) error {
	info, err := storage.Resolve(updated, sch)
	if err != nil {
		return err
	}

	table, column, err := schemamech.ResolveSubjectTable(updated.QualifiedName(), sch)
	if err != nil {
		return err
	}
	referrers := referencingConstraints(updated, sch)
	for _, c := range referrers {
		disp.plan.collect(
			schemamech.DropConstraintSQL(&c, table),
			fmt.Sprintf("drop constraint %s ahead of retyping %s", c.QualifiedName(), updated.QualifiedName()),
		)
	}
	recreateConstraints := func() {
		for _, c := range referrers {
			disp.plan.collect(
				schemamech.CreateConstraintSQL(&c, table, column, constraintKindOf(c)),
				fmt.Sprintf("recreate constraint %s after retyping %s", c.QualifiedName(), updated.QualifiedName()),
			)
		}
	}

	if info.Kind == storage.SourceInline {
		using := usingClause(old, updated, info.Column)
		colType := pgColumnType(info.ColumnType)
		sql := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, dbops.QuoteIdent(info.Column), colType)
		if using != "" {
			sql += fmt.Sprintf(" USING %s", using)
		}
		sql += ";"
		disp.plan.collect(sql, fmt.Sprintf("change column type for %s", updated.QualifiedName()))
		recreateConstraints()
		return nil
	}

	linkTable := dbops.QualifyIdent(info.Table.Module, info.Table.Name)
	tmpCol := "target_new"
	colType := pgColumnType(info.ColumnType)
	using := usingClause(old, updated, storage.TargetColumn)
	disp.plan.collect(
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", linkTable, dbops.QuoteIdent(tmpCol), colType),
		fmt.Sprintf("materialize converted values for %s", updated.QualifiedName()),
	)
	convert := using
	if convert == "" {
		convert = dbops.QuoteIdent(storage.TargetColumn)
	}
	disp.plan.collect(
		fmt.Sprintf("UPDATE %s SET %s = %s;", linkTable, dbops.QuoteIdent(tmpCol), convert),
		fmt.Sprintf("populate converted values for %s", updated.QualifiedName()),
	)
	disp.plan.collect(
		fmt.Sprintf("DELETE FROM %s WHERE %s IS NULL;", linkTable, dbops.QuoteIdent(tmpCol)),
		fmt.Sprintf("drop rows that failed conversion for %s", updated.QualifiedName()),
	)
	if updated.Cardinality.IsRequired() {
		sourceTable := dbops.QualifyIdent(updated.Source.Module, updated.Source.Name)
		disp.plan.collect(
			fmt.Sprintf(
				"DO $$ BEGIN IF EXISTS (SELECT 1 FROM %s s WHERE NOT EXISTS (SELECT 1 FROM %s lt WHERE lt.%s = s.id)) THEN RAISE EXCEPTION 'required link %s lost rows during type conversion'; END IF; END $$;",
				sourceTable, linkTable, dbops.QuoteIdent(storage.SourceColumn), updated.QualifiedName(),
			),
			fmt.Sprintf("verify the required link %s still covers every source", updated.QualifiedName()),
		)
	}
	disp.plan.collect(
		fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", linkTable, dbops.QuoteIdent(storage.TargetColumn)),
		fmt.Sprintf("drop the pre-conversion target column for %s", updated.QualifiedName()),
	)
	disp.plan.collect(
		fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", linkTable, dbops.QuoteIdent(tmpCol), dbops.QuoteIdent(storage.TargetColumn)),
		fmt.Sprintf("rename the converted target column for %s", updated.QualifiedName()),
	)
	recreateConstraints()
	return nil
}

// referencingConstraints returns every constraint whose subject is the
// pointer itself, using the same referrer index emit_constraint.go
// populates via WithReference when the constraint is created.
func referencingConstraints(ptr *schema.Pointer, sch *schema.Schema) []schema.Constraint {
	var out []schema.Constraint
	for _, obj := range sch.Referrers(ptr.ID(), "subject") {
		if c, ok := obj.(schema.Constraint); ok {
			out = append(out, c)
		}
	}
	return out
}

// constraintKindOf recovers the constraint mechanism from the stored
// object alone: schema.Constraint keeps no persisted Kind (CHECK vs
// UNIQUE is only known transiently from the Create command's "unique"
// field), so a constraint with no boolean expression of its own is
// treated as UNIQUE, matching createConstraint's own default of
// KindCheck with a non-empty Expr otherwise.
func constraintKindOf(c schema.Constraint) schemamech.ConstraintKind {
	if c.Expr.Text == "" {
		return schemamech.KindUnique
	}
	return schemamech.KindCheck
}

// usingClause renders the USING expression for a type change, given the
// column the value currently lives in. Returns "" only when old and
// updated target the identical type (no conversion needed at all).
func usingClause(old, updated *schema.Pointer, column string) string {
	if old.Target.Equal(updated.Target) {
		return ""
	}
	return fmt.Sprintf("%s::%s", dbops.QuoteIdent(column), pgColumnType(updated.Target))
}
