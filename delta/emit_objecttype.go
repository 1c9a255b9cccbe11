package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
)

// emitObjectType handles Create/Delete commands whose subject is an
// schema.ObjectType: create the backing table with an identity column,
// comment it, then create the inheritance view; delete drops the view
// then the table, skipping physical table operations entirely for
// compound (union/intersection) and alias/view types, which never had
// one. Grounded on internal/diff/table.go's
// generateCreateTablesSQL/generateDropTablesSQL.
func (disp *dispatcher) emitObjectType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Kind {
	case schema.CmdCreate:
		return disp.createObjectType(cmd, sch)
	case schema.CmdDelete:
		return disp.deleteObjectType(cmd, sch)
	case schema.CmdAlter, schema.CmdRebase:
		return disp.alterObjectType(cmd, sch)
	case schema.CmdRename:
		return disp.renameObjectType(cmd, sch)
	default:
		return nil, fmt.Errorf("delta: unsupported command kind %s for object type", cmd.Kind)
	}
}

func (disp *dispatcher) createObjectType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	flags := schema.ObjectTypeFlags{}
	if v, ok := cmd.Field("abstract"); ok {
		flags.Abstract, _ = v.(bool)
	}
	if v, ok := cmd.Field("union"); ok {
		flags.Union, _ = v.(bool)
		flags.Compound = flags.Compound || flags.Union
	}
	if v, ok := cmd.Field("intersection"); ok {
		flags.Intersection, _ = v.(bool)
		flags.Compound = flags.Compound || flags.Intersection
	}
	var bases []schema.Name
	if v, ok := cmd.Field("bases"); ok {
		bases, _ = v.([]schema.Name)
	}
	comment, _ := stringField(cmd, "comment")

	ancestors := computeAncestors(bases, sch)
	ancestors = append(ancestors, cmd.Subject.Name)

	ot := schema.ObjectType{
		Base:  schema.NewBase(cmd.Subject.ID, sch.NextSeq(), cmd.Subject.Name, bases, ancestors, nil),
		Flags: flags,
	}
	next := sch.WithObject(ot)

	if flags.Abstract || flags.Union || flags.Intersection {
		disp.markTouched(ot.QualifiedName())
		return next, nil
	}

	table := dbops.QualifyIdent(ot.QualifiedName().Module, ot.QualifiedName().Name)
	disp.plan.collect(
		fmt.Sprintf("CREATE TABLE %s (id uuid PRIMARY KEY DEFAULT gen_random_uuid());", table),
		fmt.Sprintf("create table for %s", ot.QualifiedName()),
	)
	if comment != "" {
		disp.plan.collect(
			fmt.Sprintf("COMMENT ON TABLE %s IS %s;", table, dbops.QuoteLiteral(comment)),
			fmt.Sprintf("comment on table for %s", ot.QualifiedName()),
		)
	}
	for _, op := range disp.views.Create(&ot, next, nil, nil) {
		disp.plan.collect(op.SQL, op.Description)
	}
	disp.markTouched(ot.QualifiedName())
	return next, nil
}

func (disp *dispatcher) deleteObjectType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		if cmd.IfExists {
			return sch, nil
		}
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	ot, ok := obj.(schema.ObjectType)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not an object type", cmd.Subject.Name)
	}

	if !ot.IsCompoundType() && !ot.IsView() {
		vname := schema.NewQualName(ot.QualifiedName().Module, ot.QualifiedName().Name+"_view")
		disp.plan.collect(
			fmt.Sprintf("DROP VIEW IF EXISTS %s;", dbops.QualifyIdent(vname.Module, vname.Name)),
			fmt.Sprintf("drop inheritance view for %s", ot.QualifiedName()),
		)
		disp.plan.collect(
			fmt.Sprintf("DROP TABLE IF EXISTS %s;", dbops.QualifyIdent(ot.QualifiedName().Module, ot.QualifiedName().Name)),
			fmt.Sprintf("drop table for %s", ot.QualifiedName()),
		)
	}

	next, err := sch.WithoutObject(ot.ID(), cmd.IfUnused)
	if err != nil {
		return nil, err
	}
	disp.markTouched(ot.QualifiedName())
	return next, nil
}

func (disp *dispatcher) alterObjectType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	old, ok := obj.(schema.ObjectType)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not an object type", cmd.Subject.Name)
	}
	updated := old
	if cmd.Kind == schema.CmdRebase && cmd.NewBases != nil {
		ancestors := computeAncestors(cmd.NewBases, sch)
		ancestors = append(ancestors, old.QualifiedName())
		updated = schema.ObjectType{
			Base:  schema.NewBase(old.ID(), old.CreationSeq(), old.QualifiedName(), cmd.NewBases, ancestors, nil),
			Flags: old.Flags,
			Pointers: old.Pointers,
			Material: old.Material,
		}
	}
	if v, ok := cmd.Field("abstract"); ok {
		updated.Flags.Abstract, _ = v.(bool)
	}
	next := sch.WithObject(updated)

	if !updated.IsCompoundType() && !updated.IsView() {
		for _, op := range disp.views.Alter(&old, &updated, next) {
			disp.plan.collect(op.SQL, op.Description)
		}
	}
	disp.markTouched(updated.QualifiedName())
	return next, nil
}

func (disp *dispatcher) renameObjectType(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	obj, ok := sch.ByID(cmd.Subject.ID)
	if !ok {
		return nil, fmt.Errorf("delta: %w: %s", schema.ErrUnknownObject, cmd.Subject.Name)
	}
	old, ok := obj.(schema.ObjectType)
	if !ok {
		return nil, fmt.Errorf("delta: subject %s is not an object type", cmd.Subject.Name)
	}
	next := sch.WithoutName(old.QualifiedName())
	renamed := schema.ObjectType{
		Base:     schema.NewBase(old.ID(), old.CreationSeq(), cmd.NewName, old.Bases(), append(dropLast(old.Ancestors()), cmd.NewName), nil),
		Flags:    old.Flags,
		Pointers: old.Pointers,
		Material: old.Material,
	}
	next = next.WithObject(renamed)

	if !renamed.IsCompoundType() && !renamed.IsView() {
		oldTable := dbops.QualifyIdent(old.QualifiedName().Module, old.QualifiedName().Name)
		newTable := dbops.QuoteIdent(cmd.NewName.Name)
		disp.plan.collect(
			fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", oldTable, newTable),
			fmt.Sprintf("rename table for %s to %s", old.QualifiedName(), cmd.NewName),
		)
	}
	disp.markTouched(renamed.QualifiedName())
	return next, nil
}

func dropLast(names []schema.Name) []schema.Name {
	if len(names) == 0 {
		return names
	}
	return names[:len(names)-1]
}

func computeAncestors(bases []schema.Name, sch *schema.Schema) []schema.Name {
	seen := map[schema.Name]bool{}
	var out []schema.Name
	for _, b := range bases {
		obj, ok := sch.ByName(b)
		if !ok {
			continue
		}
		for _, a := range obj.Ancestors() {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}

func stringField(cmd *schema.Command, name string) (string, bool) {
	v, ok := cmd.Field(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
