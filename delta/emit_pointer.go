package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// emitPointer handles Create/Alter/Delete for schema.Pointer subjects:
// link/property creation either adds a link table (with a (source,
// target) unique constraint and a target index) or an inline column
// plus an inheritance-view registration; a required pointer (single or
// multi, inline or link-table) with no default is followed by a check
// that raises if the source table already has rows, so existing rows
// lacking a value raise rather than silently pass.
// Grounded on internal/diff/column.go + internal/diff/constraint.go's
// unique+index emission + internal/diff/index.go.
func (disp *dispatcher) emitPointer(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createPointer(cmd, sch)
	case schema.CmdDelete:
		return disp.deletePointer(cmd, sch)
	case schema.CmdAlter:
		return disp.alterPointer(cmd, sch)
	case schema.CmdRename:
		return disp.renamePointer(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for pointer", cmd.Kind)
	}
}

func (disp *dispatcher) createPointer(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	p := schema.Pointer{
		Base: schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, nil, nil),
	}
	if v, ok := cmd.Field("source"); ok {
		p.Source, _ = v.(schema.Name)
	}
	if v, ok := cmd.Field("target"); ok {
		p.Target, _ = v.(schema.Name)
	}
	if v, ok := cmd.Field("cardinality"); ok {
		p.Cardinality, _ = v.(schema.Cardinality)
	}
	if v, ok := cmd.Field("is_link"); ok {
		p.IsLink, _ = v.(bool)
	}
	if v, ok := cmd.Field("on_delete"); ok {
		p.OnDelete, _ = v.(schema.OnTargetDelete)
	}
	if v, ok := cmd.Field("computable"); ok {
		if ref, ok := v.(schema.ExprRef); ok {
			p.Computable = &ref
		}
	}
	if v, ok := cmd.Field("default"); ok {
		if ref, ok := v.(schema.ExprRef); ok {
			p.Default = &ref
		}
	}

	next := sch.WithObject(p)
	next = next.WithReference(p.ID(), mustID(next, p.Source), "source")
	next = next.WithReference(p.ID(), mustID(next, p.Target), "target")

	if owner, ok := next.ByName(p.Source); ok {
		if ot, ok := owner.(schema.ObjectType); ok {
			ot.Pointers = append(append([]schema.Name(nil), ot.Pointers...), p.QualifiedName())
			next = next.WithObject(ot)
		}
	}

	if p.IsLink {
		disp.markTouched(p.Target)
	}

	if !storage.HasStorage(&p) {
		disp.markTouched(p.Source)
		return next, nil
	}

	info, err := storage.Resolve(&p, next)
	if err != nil {
		return nil, err
	}

	if info.Kind == storage.LinkTable {
		disp.emitCreateLinkTable(&p, info)
	} else {
		disp.emitAddColumn(&p, info)
	}
	if p.Cardinality.IsRequired() && p.Default == nil {
		disp.emitRequiredNoDefaultWarning(&p)
	}

	disp.markTouched(p.Source)
	return next, nil
}

func mustID(sch *schema.Schema, name schema.Name) schema.ID {
	if obj, ok := sch.ByName(name); ok {
		return obj.ID()
	}
	return schema.NilID
}

func (disp *dispatcher) emitCreateLinkTable(p *schema.Pointer, info *storage.Info) {
	table := dbops.QualifyIdent(info.Table.Module, info.Table.Name)
	disp.plan.collect(
		fmt.Sprintf(
			"CREATE TABLE %s (%s uuid NOT NULL, %s uuid NOT NULL, UNIQUE (%s, %s));",
			table, dbops.QuoteIdent(storage.SourceColumn), dbops.QuoteIdent(storage.TargetColumn),
			dbops.QuoteIdent(storage.SourceColumn), dbops.QuoteIdent(storage.TargetColumn),
		),
		fmt.Sprintf("create link table for %s", p.QualifiedName()),
	)
	idxName := info.Table.Name + "_target_idx"
	disp.plan.collect(
		fmt.Sprintf("CREATE INDEX %s ON %s (%s);", dbops.QuoteIdent(idxName), table, dbops.QuoteIdent(storage.TargetColumn)),
		fmt.Sprintf("create target index for %s", p.QualifiedName()),
	)
}

func (disp *dispatcher) emitAddColumn(p *schema.Pointer, info *storage.Info) {
	table := dbops.QualifyIdent(info.Table.Module, info.Table.Name)
	colType := pgColumnType(info.ColumnType)
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, dbops.QuoteIdent(info.Column), colType)
	if p.Cardinality.IsRequired() && p.Default != nil {
		sql += fmt.Sprintf(" DEFAULT %s", dbops.QuoteLiteral(p.Default.Text))
	}
	sql += ";"
	disp.plan.collect(sql, fmt.Sprintf("add column for %s", p.QualifiedName()))
}

func (disp *dispatcher) emitRequiredNoDefaultWarning(p *schema.Pointer) {
	table := dbops.QualifyIdent(p.Source.Module, p.Source.Name)
	disp.plan.collect(
		fmt.Sprintf(
			"DO $$ BEGIN IF EXISTS (SELECT 1 FROM %s LIMIT 1) THEN RAISE EXCEPTION 'cannot add required pointer %s without a default on a non-empty table'; END IF; END $$;",
			table, p.QualifiedName(),
		),
		fmt.Sprintf("verify required pointer %s has a value for existing rows", p.QualifiedName()),
	)
}

func (disp *dispatcher) deletePointer(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	p, ok := obj.(schema.Pointer)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a pointer", cmd.Subject.Name)
	}

	if storage.HasStorage(&p) {
		info, err := storage.Resolve(&p, sch)
		if err != nil {
			return nil, err
		}
		if info.Kind == storage.LinkTable {
			disp.plan.collect(
				fmt.Sprintf("DROP TABLE IF EXISTS %s;", dbops.QualifyIdent(info.Table.Module, info.Table.Name)),
				fmt.Sprintf("drop link table for %s", p.QualifiedName()),
			)
		} else {
			disp.plan.collect(
				fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", dbops.QualifyIdent(info.Table.Module, info.Table.Name), dbops.QuoteIdent(info.Column)),
				fmt.Sprintf("drop column for %s", p.QualifiedName()),
			)
		}
	}

	next, err := sch.WithoutObject(p.ID(), cmd.IfUnused)
	if err != nil {
		return nil, err
	}
	disp.markTouched(p.Source)
	if p.IsLink {
		disp.markTouched(p.Target)
	}
	return next, nil
}

func (disp *dispatcher) alterPointer(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	old, ok := obj.(schema.Pointer)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a pointer", cmd.Subject.Name)
	}

	newCardinality := old.Cardinality
	cardinalityChanged := false
	if v, ok := cmd.Field("cardinality"); ok {
		if c, ok := v.(schema.Cardinality); ok && c != old.Cardinality {
			newCardinality = c
			cardinalityChanged = true
		}
	}

	newTarget := old.Target
	typeChanged := false
	if v, ok := cmd.Field("target"); ok {
		if t, ok := v.(schema.Name); ok && !t.Equal(old.Target) {
			newTarget = t
			typeChanged = true
		}
	}

	optionalityChanged := false
	newRequired := old.Cardinality.IsRequired()
	if v, ok := cmd.Field("required"); ok {
		if r, ok := v.(bool); ok && r != old.Cardinality.IsRequired() {
			newRequired = r
			optionalityChanged = true
		}
	}

	policyChanged := false
	newOnDelete := old.OnDelete
	if v, ok := cmd.Field("on_delete"); ok {
		if d, ok := v.(schema.OnTargetDelete); ok && d != old.OnDelete {
			newOnDelete = d
			policyChanged = true
		}
	}

	updated := old
	updated.Cardinality = newCardinality
	updated.Target = newTarget
	updated.OnDelete = newOnDelete
	if optionalityChanged {
		if newRequired {
			updated.Cardinality.Lower = schema.LowerRequired
		} else {
			updated.Cardinality.Lower = schema.LowerOptional
		}
	}
	next := sch.WithObject(updated)

	switch {
	case cardinalityChanged && old.Cardinality.IsMulti() != newCardinality.IsMulti():
		if err := disp.emitCardinalityChange(&old, &updated, next); err != nil {
			return nil, err
		}
	case typeChanged:
		if err := disp.emitTypeChange(&old, &updated, next); err != nil {
			return nil, err
		}
	case optionalityChanged:
		if err := disp.emitOptionalityChange(&old, &updated, next); err != nil {
			return nil, err
		}
	}

	disp.markTouched(updated.Source)
	if updated.IsLink && (typeChanged || policyChanged || (cardinalityChanged && old.Cardinality.IsRequired() != newCardinality.IsRequired())) {
		disp.markTouched(old.Target)
		disp.markTouched(updated.Target)
	}
	return next, nil
}

func (disp *dispatcher) renamePointer(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	old, ok := obj.(schema.Pointer)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a pointer", cmd.Subject.Name)
	}
	renamed := schema.Pointer{
		Base:           schema.NewBase(old.ID(), old.CreationSeq(), cmd.NewName, old.Bases(), old.Ancestors(), nil),
		Source:         old.Source,
		Target:         old.Target,
		Cardinality:    old.Cardinality,
		Direction:      old.Direction,
		IsLink:         old.IsLink,
		LinkProperties: old.LinkProperties,
		Computable:     old.Computable,
		Default:        old.Default,
		OnDelete:       old.OnDelete,
		Derived:        old.Derived,
	}
	next := sch.WithoutName(old.QualifiedName())
	next = next.WithObject(renamed)

	if storage.HasStorage(&old) {
		info, err := storage.Resolve(&old, next)
		if err != nil {
			return nil, err
		}
		if info.Kind == storage.SourceInline {
			disp.plan.collect(
				fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;",
					dbops.QualifyIdent(info.Table.Module, info.Table.Name),
					dbops.QuoteIdent(info.Column), dbops.QuoteIdent(cmd.NewName.Name)),
				fmt.Sprintf("rename column for %s to %s", old.QualifiedName(), cmd.NewName),
			)
		}
	}
	disp.markTouched(old.Source)
	return next, nil
}

// pgColumnType maps a schema scalar/object target name to the Postgres
// column type its storage occupies.
func pgColumnType(name schema.Name) string {
	if name.Module != "std" {
		return "uuid"
	}
	switch name.Name {
	case "str", "json":
		if name.Name == "json" {
			return "jsonb"
		}
		return "text"
	case "bytes":
		return "bytea"
	case "bool":
		return "boolean"
	case "int16":
		return "smallint"
	case "int32":
		return "integer"
	case "int64", "bigint":
		return "bigint"
	case "float32":
		return "real"
	case "float64":
		return "double precision"
	case "decimal":
		return "numeric"
	case "uuid":
		return "uuid"
	case "datetime":
		return "timestamptz"
	case "duration":
		return "interval"
	case "local_date":
		return "date"
	case "local_time":
		return "time"
	case "local_datetime":
		return "timestamp"
	default:
		return "text"
	}
}
