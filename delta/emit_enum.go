package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// emitScalarType handles Create/Alter/Delete for schema.ScalarType
// subjects. Non-enum scalars never need backend DDL of their own (they
// map directly to a built-in Postgres type wherever a pointer
// references them); enums get a Postgres enum type, evolved in place
// for pure appends and fully rebuilt otherwise.
func (disp *dispatcher) emitScalarType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createScalarType(cmd, sch)
	case schema.CmdAlter:
		return disp.alterScalarType(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteScalarType(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for scalar type", cmd.Kind)
	}
}

func (disp *dispatcher) createScalarType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	var values []string
	if v, ok := cmd.Field("values"); ok {
		values, _ = v.([]string)
	}
	st := schema.ScalarType{
		Base:   schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, nil, []schema.Name{cmd.Subject.Name}, nil),
		Values: values,
	}
	next := sch.WithObject(st)
	if st.IsEnum() {
		disp.plan.collect(enumCreateSQL(st), fmt.Sprintf("create enum type %s", st.QualifiedName()))
	}
	return next, nil
}

func enumCreateSQL(st schema.ScalarType) string {
	labels := make([]string, len(st.Values))
	for i, v := range st.Values {
		labels[i] = dbops.QuoteLiteral(v)
	}
	typeName := dbops.QualifyIdent(st.QualifiedName().Module, st.QualifiedName().Name)
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", typeName, joinComma(labels))
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}

// alterScalarType evolves an enum. A pure append (every old value
// still present, in the same relative order, with only new values
// added) is done in place via ALTER TYPE … ADD VALUE [BEFORE|AFTER].
// Any reorder or removal requires a full rebuild: every pointer
// currently targeting the enum is retargeted to a concrete ancestor
// scalar, the enum type is dropped and recreated, and those pointers'
// targets are restored, exactly as spec.md §4.5 and §8 scenario 6 —
// grounded verbatim on internal/diff/type.go's
// generateAlterTypeEnumStatements for the append path, extended with
// the rewrite-through-ancestor path recovered conceptually from
// original_source/edb/pgsql/delta.py's enum-rebuild comments.
func (disp *dispatcher) alterScalarType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	old, ok := obj.(schema.ScalarType)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a scalar type", cmd.Subject.Name)
	}
	var newValues []string
	if v, ok := cmd.Field("values"); ok {
		newValues, _ = v.([]string)
	} else {
		newValues = old.Values
	}

	updated := schema.ScalarType{Base: old.Base, Values: newValues}
	next := sch.WithObject(updated)

	if !old.IsEnum() && !updated.IsEnum() {
		return next, nil
	}

	if isAppendOnly(old.Values, newValues) {
		typeName := dbops.QualifyIdent(old.QualifiedName().Module, old.QualifiedName().Name)
		emitEnumInsertions(disp, old, typeName, newValues)
		return next, nil
	}

	disp.rebuildEnum(old, updated, next)
	return next, nil
}

// isAppendOnly reports whether every value of oldValues still appears
// in newValues, in the same relative order, with only new values
// possibly inserted anywhere (not just at the end) — §8 scenario 6's
// "adding a value before an existing value" case is append-only in
// this sense even though it is not a trailing-suffix match.
func isAppendOnly(oldValues, newValues []string) bool {
	old := make(map[string]bool, len(oldValues))
	for _, v := range oldValues {
		old[v] = true
	}
	oi := 0
	for _, v := range newValues {
		if !old[v] {
			continue
		}
		if oi >= len(oldValues) || oldValues[oi] != v {
			return false
		}
		oi++
	}
	return oi == len(oldValues)
}

// emitEnumInsertions renders one ALTER TYPE ... ADD VALUE statement
// per value newValues adds over old.Values, isAppendOnly having
// already established the old values survive in order. Each inserted
// value is anchored BEFORE the nearest old (already-existing) value
// that follows it, which is always valid regardless of how many other
// insertions surround it; only a value with no following old survivor
// (a trailing append) falls back to AFTER the nearest preceding value,
// which by then has already been created by an earlier statement in
// this same sequence.
func emitEnumInsertions(disp *dispatcher, old schema.ScalarType, typeName string, newValues []string) {
	isOld := make(map[string]bool, len(old.Values))
	for _, v := range old.Values {
		isOld[v] = true
	}

	nextOld := make([]int, len(newValues))
	last := -1
	for i := len(newValues) - 1; i >= 0; i-- {
		if isOld[newValues[i]] {
			last = i
		}
		nextOld[i] = last
	}

	prev := ""
	for i, v := range newValues {
		if isOld[v] {
			prev = v
			continue
		}
		switch {
		case nextOld[i] != -1:
			anchor := newValues[nextOld[i]]
			disp.plan.collect(
				fmt.Sprintf("ALTER TYPE %s ADD VALUE %s BEFORE %s;", typeName, dbops.QuoteLiteral(v), dbops.QuoteLiteral(anchor)),
				fmt.Sprintf("insert enum value %s into %s before %s", v, old.QualifiedName(), anchor),
			)
		case prev != "":
			disp.plan.collect(
				fmt.Sprintf("ALTER TYPE %s ADD VALUE %s AFTER %s;", typeName, dbops.QuoteLiteral(v), dbops.QuoteLiteral(prev)),
				fmt.Sprintf("append enum value %s to %s", v, old.QualifiedName()),
			)
		default:
			disp.plan.collect(
				fmt.Sprintf("ALTER TYPE %s ADD VALUE %s;", typeName, dbops.QuoteLiteral(v)),
				fmt.Sprintf("append enum value %s to %s", v, old.QualifiedName()),
			)
		}
		prev = v
	}
}

// rebuildEnum drops and recreates an enum whose values were reordered
// or removed. Because Postgres forbids dropping a type still
// referenced by a column, every inline column of the enum type is
// first retyped to text (the backing type of str), the old type is
// renamed out of the way, the new type is created and the old one
// dropped, and each column is then cast back to the rebuilt type.
// Pointers stored in a link table are not retyped: their target column
// is uuid (see emitCreateLinkTable), never the enum.
func (disp *dispatcher) rebuildEnum(old, updated schema.ScalarType, sch *schema.Schema) {
	typeName := dbops.QualifyIdent(old.QualifiedName().Module, old.QualifiedName().Name)

	affected := affectedPointers(old.QualifiedName(), sch)
	for _, p := range affected {
		info, err := resolveStorage(&p, sch)
		if err != nil || info.Kind != storage.SourceInline {
			continue
		}
		table := dbops.QualifyIdent(info.Table.Module, info.Table.Name)
		disp.plan.collect(
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE text;", table, dbops.QuoteIdent(info.Column)),
			fmt.Sprintf("retarget %s off the enum ahead of rebuilding %s", p.QualifiedName(), old.QualifiedName()),
		)
	}

	disp.plan.collect(fmt.Sprintf("ALTER TYPE %s RENAME TO %s;", typeName, dbops.QuoteIdent(old.QualifiedName().Name+"_old")),
		fmt.Sprintf("rename the old enum type for %s out of the way", old.QualifiedName()))
	disp.plan.collect(enumCreateSQL(updated), fmt.Sprintf("recreate enum type %s with its new values", updated.QualifiedName()))
	disp.plan.collect(fmt.Sprintf("DROP TYPE %s;", dbops.QuoteIdent(old.QualifiedName().Name+"_old")),
		fmt.Sprintf("drop the superseded enum type for %s", old.QualifiedName()))

	for _, p := range affected {
		info, err := resolveStorage(&p, sch)
		if err != nil || info.Kind != storage.SourceInline {
			continue
		}
		table := dbops.QualifyIdent(info.Table.Module, info.Table.Name)
		disp.plan.collect(
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;",
				table, dbops.QuoteIdent(info.Column), typeName, dbops.QuoteIdent(info.Column), typeName),
			fmt.Sprintf("restore %s's target to the rebuilt enum %s", p.QualifiedName(), updated.QualifiedName()),
		)
	}
}

func affectedPointers(enumName schema.Name, sch *schema.Schema) []schema.Pointer {
	var out []schema.Pointer
	for _, obj := range sch.AllObjects() {
		if p, ok := obj.(schema.Pointer); ok && p.Target.Equal(enumName) {
			out = append(out, p)
		}
	}
	return out
}

func (disp *dispatcher) deleteScalarType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	st, ok := obj.(schema.ScalarType)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not a scalar type", cmd.Subject.Name)
	}
	if st.IsEnum() {
		disp.plan.collect(
			fmt.Sprintf("DROP TYPE IF EXISTS %s;", dbops.QualifyIdent(st.QualifiedName().Module, st.QualifiedName().Name)),
			fmt.Sprintf("drop enum type %s", st.QualifiedName()),
		)
	}
	return sch.WithoutObject(st.ID(), cmd.IfUnused)
}
