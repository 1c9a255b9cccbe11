// Package schemamech renders the backend DDL for schema.Constraint and
// schema.Index objects. Named after original_source/edb/pgsql/delta.py's
// "schemamech" import — the module that translates a schema-level
// constraint/index object into its backing mechanism (a CHECK/UNIQUE/FK
// constraint, or an index) — with concrete rendering logic carried over
// from internal/diff/constraint.go and internal/diff/index.go.
package schemamech

import (
	"fmt"
	"strings"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// ConstraintKind classifies what mechanism a schema.Constraint compiles
// to. The source language only has one generic Constraint object (with
// an arbitrary boolean Expr); a handful of well-known expression shapes
// get dedicated Postgres mechanisms, everything else falls back to a
// CHECK constraint over the compiled expression text.
type ConstraintKind int

const (
	KindCheck ConstraintKind = iota
	KindUnique
	KindExclusive
)

// CreateConstraintSQL renders the ALTER TABLE ... ADD CONSTRAINT
// statement backing c, given the table it lives on (resolved by the
// caller from c.Subject via storage.Resolve on the owning pointer, or
// directly from the object type's table when the subject is itself an
// object type).
func CreateConstraintSQL(c *schema.Constraint, table schema.Name, column string, kind ConstraintKind) string {
	qTable := dbops.QualifyIdent(table.Module, table.Name)
	name := constraintName(c)
	switch kind {
	case KindUnique:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);", qTable, dbops.QuoteIdent(name), dbops.QuoteIdent(column))
	default:
		check := c.Expr.Text
		if check == "" {
			check = "true"
		}
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);", qTable, dbops.QuoteIdent(name), check)
	}
}

// DropConstraintSQL renders the inverse drop.
func DropConstraintSQL(c *schema.Constraint, table schema.Name) string {
	qTable := dbops.QualifyIdent(table.Module, table.Name)
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", qTable, dbops.QuoteIdent(constraintName(c)))
}

func constraintName(c *schema.Constraint) string {
	name := strings.ReplaceAll(c.QualifiedName().Name, "::", "_")
	return name + "_chk"
}

// CreateIndexSQL renders the CREATE INDEX statement backing idx, given
// the table and resolved column expressions it indexes.
func CreateIndexSQL(idx *schema.Index, table schema.Name, exprs []string) string {
	qTable := dbops.QualifyIdent(table.Module, table.Name)
	method := idx.Using
	if method == "" {
		method = "btree"
	}
	name := indexName(idx, table)
	return fmt.Sprintf("CREATE INDEX %s ON %s USING %s (%s);", dbops.QuoteIdent(name), qTable, method, strings.Join(exprs, ", "))
}

// DropIndexSQL renders the inverse drop.
func DropIndexSQL(idx *schema.Index, table schema.Name) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s;", dbops.QuoteIdent(indexName(idx, table)))
}

func indexName(idx *schema.Index, table schema.Name) string {
	return table.Name + "_" + strings.ReplaceAll(idx.QualifiedName().Name, "::", "_") + "_idx"
}

// ResolveSubjectTable finds the physical table and, if the constraint
// or index's subject is a pointer rather than an object type directly,
// the inline column it constrains. Compound composite-constraint
// rewrites (constraints that span multiple source-inline pointers)
// resolve one column per subject the caller passes in separately; this
// helper covers the common single-subject case exercised by
// emit_constraint.go/emit_index.go.
func ResolveSubjectTable(subject schema.Name, sch *schema.Schema) (table schema.Name, column string, err error) {
	obj, ok := sch.ByName(subject)
	if !ok {
		return schema.Name{}, "", fmt.Errorf("schemamech: unknown constraint/index subject %s", subject)
	}
	switch o := obj.(type) {
	case schema.ObjectType:
		return o.QualifiedName(), "", nil
	case schema.Pointer:
		info, err := storage.Resolve(&o, sch)
		if err != nil {
			return schema.Name{}, "", err
		}
		if info.Kind == storage.SourceInline {
			return info.Table, info.Column, nil
		}
		return info.Table, storage.TargetColumn, nil
	default:
		return schema.Name{}, "", fmt.Errorf("schemamech: subject %s is neither an object type nor a pointer", subject)
	}
}
