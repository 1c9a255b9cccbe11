package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// emitCardinalityChange performs the two-phase single<->multi
// migration of spec.md §4.5 "Pointer cardinality change": single->multi
// creates the link table and copies the existing column's values in,
// then drops the source column and rebuilds the inheritance view;
// multi->single does the inverse, raising on a not-null violation when
// the pointer is required. Grounded on internal/diff/column.go's
// type-change/USING-clause machinery, generalized from "type change"
// to "storage kind change".
func (disp *dispatcher) emitCardinalityChange(old, updated *schema.Pointer, sch *schema.Schema) error {
	if !updated.Cardinality.IsMulti() {
		return disp.emitMultiToSingle(old, updated, sch)
	}
	return disp.emitSingleToMulti(old, updated, sch)
}

func (disp *dispatcher) emitSingleToMulti(old, updated *schema.Pointer, sch *schema.Schema) error {
	oldInfo, err := storage.Resolve(old, sch)
	if err != nil {
		return err
	}
	newInfo, err := storage.Resolve(updated, sch)
	if err != nil {
		return err
	}
	if oldInfo.Kind != storage.SourceInline || newInfo.Kind != storage.LinkTable {
		return fmt.Errorf("delta: emitSingleToMulti called on a pointer not transitioning source-inline -> link-table")
	}

	linkTable := dbops.QualifyIdent(newInfo.Table.Module, newInfo.Table.Name)
	sourceTable := dbops.QualifyIdent(oldInfo.Table.Module, oldInfo.Table.Name)

	disp.plan.collect(
		fmt.Sprintf("CREATE TABLE %s (%s uuid NOT NULL, %s uuid NOT NULL, UNIQUE (%s, %s));",
			linkTable, dbops.QuoteIdent(storage.SourceColumn), dbops.QuoteIdent(storage.TargetColumn),
			dbops.QuoteIdent(storage.SourceColumn), dbops.QuoteIdent(storage.TargetColumn)),
		fmt.Sprintf("create link table for %s (single->multi migration)", updated.QualifiedName()),
	)
	disp.plan.collect(
		fmt.Sprintf("INSERT INTO %s (%s, %s) SELECT id, %s FROM %s WHERE %s IS NOT NULL;",
			linkTable, dbops.QuoteIdent(storage.SourceColumn), dbops.QuoteIdent(storage.TargetColumn),
			dbops.QuoteIdent(oldInfo.Column), sourceTable, dbops.QuoteIdent(oldInfo.Column)),
		fmt.Sprintf("migrate existing values for %s into the link table", updated.QualifiedName()),
	)
	disp.plan.collect(
		fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", sourceTable, dbops.QuoteIdent(oldInfo.Column)),
		fmt.Sprintf("drop former inline column for %s", updated.QualifiedName()),
	)
	return nil
}

func (disp *dispatcher) emitMultiToSingle(old, updated *schema.Pointer, sch *schema.Schema) error {
	oldInfo, err := storage.Resolve(old, sch)
	if err != nil {
		return err
	}
	newInfo, err := storage.Resolve(updated, sch)
	if err != nil {
		return err
	}
	if oldInfo.Kind != storage.LinkTable || newInfo.Kind != storage.SourceInline {
		return fmt.Errorf("delta: emitMultiToSingle called on a pointer not transitioning link-table -> source-inline")
	}

	sourceTable := dbops.QualifyIdent(newInfo.Table.Module, newInfo.Table.Name)
	linkTable := dbops.QualifyIdent(oldInfo.Table.Module, oldInfo.Table.Name)
	colType := pgColumnType(newInfo.ColumnType)

	disp.plan.collect(
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", sourceTable, dbops.QuoteIdent(newInfo.Column), colType),
		fmt.Sprintf("add inline column for %s (multi->single migration)", updated.QualifiedName()),
	)
	disp.plan.collect(
		fmt.Sprintf("UPDATE %s t SET %s = lt.%s FROM %s lt WHERE lt.%s = t.id;",
			sourceTable, dbops.QuoteIdent(newInfo.Column), dbops.QuoteIdent(storage.TargetColumn),
			linkTable, dbops.QuoteIdent(storage.SourceColumn)),
		fmt.Sprintf("migrate one value per source from the link table for %s", updated.QualifiedName()),
	)
	if updated.Cardinality.IsRequired() {
		disp.plan.collect(
			fmt.Sprintf(
				"DO $$ BEGIN IF EXISTS (SELECT 1 FROM %s WHERE %s IS NULL) THEN RAISE EXCEPTION 'required pointer %s has sources with no value after multi->single migration'; END IF; END $$;",
				sourceTable, dbops.QuoteIdent(newInfo.Column), updated.QualifiedName(),
			),
			fmt.Sprintf("verify no source is left without a value for required pointer %s", updated.QualifiedName()),
		)
	}
	disp.plan.collect(
		fmt.Sprintf("DROP TABLE %s;", linkTable),
		fmt.Sprintf("drop former link table for %s", updated.QualifiedName()),
	)
	return nil
}
