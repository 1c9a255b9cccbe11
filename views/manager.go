// Package views maintains the inheritance views every concrete object
// type gets: a UNION ALL of the type's own table and each of its
// descendants', aligned on the pointer projection declared on the
// ancestor. Grounded directly on internal/diff/view.go +
// internal/diff/sql_generator.go's CREATE-OR-REPLACE-VIEW vs
// DROP+CREATE branching, retargeted from "view over an
// information_schema-observed table" to "view over the
// inheritance-computed descendant set" (§4.4).
package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
)

// Manager generates and maintains inheritance views for a schema
// snapshot. It holds no state of its own between calls; every method
// takes the snapshot it should operate against explicitly, so a
// Manager value is safe to share across goroutines and across
// snapshots.
type Manager struct{}

// NewManager returns a ready-to-use Manager.
func NewManager() *Manager { return &Manager{} }

func viewName(t *schema.ObjectType) schema.Name {
	return schema.NewQualName(t.QualifiedName().Module, t.QualifiedName().Name+"_view")
}

// columnProjection is the ordered, non-computable, non-derived pointer
// names t declares — the column list every member of the UNION ALL
// must expose identically, per the "view-column monotonicity" rule.
func columnProjection(t schema.ObjectType, sch *schema.Schema, excludePointers []string) []string {
	excluded := map[string]bool{}
	for _, p := range excludePointers {
		excluded[p] = true
	}
	var cols []string
	for _, pn := range t.Pointers {
		obj, ok := sch.ByName(pn)
		if !ok {
			continue
		}
		ptr, ok := obj.(schema.Pointer)
		if !ok {
			continue
		}
		if ptr.IsComputable() || ptr.Derived || excluded[pn.Name] {
			continue
		}
		cols = append(cols, pn.Name)
	}
	// Column order follows declaration order (t.Pointers), not an
	// alphabetical sort: monotonicity (columnsCompatible) depends on new
	// columns only ever being appended at the end, which only holds if
	// the projection order matches declaration order.
	return cols
}

// concreteDescendants scans sch for every ObjectType whose Ancestors()
// includes t's name, excluding t itself, abstract types, compound
// (union/intersection) types, and any name listed in excludeChildren.
func concreteDescendants(t schema.ObjectType, sch *schema.Schema, excludeChildren []schema.Name) []schema.ObjectType {
	excluded := map[schema.Name]bool{}
	for _, n := range excludeChildren {
		excluded[n] = true
	}
	var out []schema.ObjectType
	for _, obj := range sch.AllObjects() {
		ot, ok := obj.(schema.ObjectType)
		if !ok || ot.QualifiedName() == t.QualifiedName() {
			continue
		}
		if ot.IsAbstract() || ot.IsCompoundType() || ot.IsView() {
			continue
		}
		if excluded[ot.QualifiedName()] {
			continue
		}
		isDescendant := false
		for _, anc := range ot.Ancestors() {
			if anc == t.QualifiedName() {
				isDescendant = true
				break
			}
		}
		if !isDescendant {
			continue
		}
		out = append(out, ot)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QualifiedName().Less(out[j].QualifiedName())
	})
	return out
}

func selectSQL(t schema.ObjectType, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = dbops.QuoteIdent(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), dbops.QualifyIdent(t.QualifiedName().Module, t.QualifiedName().Name))
}

func definitionSQL(t schema.ObjectType, members []schema.ObjectType, cols []string) string {
	parts := make([]string, 0, len(members)+1)
	parts = append(parts, selectSQL(t, cols))
	for _, m := range members {
		parts = append(parts, selectSQL(m, cols))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

// Create emits the CREATE VIEW for t's inheritance view over t and
// every non-excluded concrete descendant.
func (m *Manager) Create(t *schema.ObjectType, sch *schema.Schema, excludeChildren []schema.Name, excludePointers []string) []dbops.Op {
	if t.IsCompoundType() || t.IsView() {
		return nil
	}
	cols := columnProjection(*t, sch, excludePointers)
	members := concreteDescendants(*t, sch, excludeChildren)
	vname := viewName(t)
	sql := fmt.Sprintf("CREATE VIEW %s AS\n%s;",
		dbops.QualifyIdent(vname.Module, vname.Name), definitionSQL(*t, members, cols))
	return []dbops.Op{{
		SQL:         sql,
		Description: fmt.Sprintf("create inheritance view for %s", t.QualifiedName()),
	}}
}

// Alter regenerates the view for a type whose own column projection or
// descendant set changed between old and new. If the new column list
// keeps the old one as its prefix (unchanged, or with columns only
// appended), CREATE OR REPLACE is used; otherwise the view is dropped
// and recreated, because Postgres forbids reordering, renaming or
// removing a view's columns in place (§4.4 "alter").
func (m *Manager) Alter(old, new *schema.ObjectType, sch *schema.Schema) []dbops.Op {
	oldCols := columnProjection(*old, sch, nil)
	newCols := columnProjection(*new, sch, nil)
	members := concreteDescendants(*new, sch, nil)
	vname := viewName(new)
	def := definitionSQL(*new, members, newCols)

	if columnsCompatible(oldCols, newCols) {
		sql := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s;", dbops.QualifyIdent(vname.Module, vname.Name), def)
		return []dbops.Op{{SQL: sql, Description: fmt.Sprintf("replace inheritance view for %s", new.QualifiedName())}}
	}

	drop := fmt.Sprintf("DROP VIEW IF EXISTS %s;", dbops.QualifyIdent(vname.Module, vname.Name))
	create := fmt.Sprintf("CREATE VIEW %s AS\n%s;", dbops.QualifyIdent(vname.Module, vname.Name), def)
	return []dbops.Op{
		{SQL: drop, Description: fmt.Sprintf("drop inheritance view for %s (column set changed)", new.QualifiedName())},
		{SQL: create, Description: fmt.Sprintf("recreate inheritance view for %s", new.QualifiedName())},
	}
}

// columnsCompatible reports whether CREATE OR REPLACE VIEW suffices:
// Postgres only allows appending new trailing columns, never
// reordering, renaming, or removing existing ones.
func columnsCompatible(old, new []string) bool {
	if len(new) < len(old) {
		return false
	}
	for i, c := range old {
		if new[i] != c {
			return false
		}
	}
	return true
}

// Cascade refreshes every ancestor view whose column projection could
// be affected by a change to one of the types named in changed,
// batched into a single pass per delta rather than once per affected
// descendant (§4.6).
func (m *Manager) Cascade(changed []schema.Name, sch *schema.Schema) []dbops.Op {
	toRefresh := map[schema.Name]bool{}
	for _, n := range changed {
		obj, ok := sch.ByName(n)
		if !ok {
			continue
		}
		for _, ancName := range obj.Ancestors() {
			if ancName == n {
				continue
			}
			toRefresh[ancName] = true
		}
	}

	var names []schema.Name
	for n := range toRefresh {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })

	var ops []dbops.Op
	for _, n := range names {
		obj, ok := sch.ByName(n)
		if !ok {
			continue
		}
		ot, ok := obj.(schema.ObjectType)
		if !ok || ot.IsCompoundType() || ot.IsView() {
			continue
		}
		// The ancestor's view already exists and its own column
		// projection is unchanged, so it is replaced in place.
		vname := viewName(&ot)
		def := definitionSQL(ot, concreteDescendants(ot, sch, nil), columnProjection(ot, sch, nil))
		ops = append(ops, dbops.Op{
			SQL:         fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s;", dbops.QualifyIdent(vname.Module, vname.Name), def),
			Description: fmt.Sprintf("refresh inheritance view for %s", ot.QualifiedName()),
		})
	}
	return ops
}
