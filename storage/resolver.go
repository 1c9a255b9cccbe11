// Package storage derives the physical table/column layout a schema
// pointer occupies, the way edb.pgsql.types.get_pointer_storage_info
// does — inverted from the teacher's internal/ir/builder.go, which
// reads layout *from* a live catalog; this instead computes the layout
// a pointer *would* require, since there is no live catalog to
// introspect until the delta dispatcher (package delta) has emitted
// DDL for it.
package storage

import (
	"fmt"

	"github.com/arcwell-db/arcql/schema"
)

// TableKind distinguishes where a pointer's values physically live.
type TableKind int

const (
	SourceInline TableKind = iota
	LinkTable
)

func (k TableKind) String() string {
	if k == LinkTable {
		return "link-table"
	}
	return "source-inline"
}

// Info is the resolved physical location of a pointer's values.
type Info struct {
	Kind       TableKind
	Table      schema.Name
	Column     string
	ColumnType schema.Name
}

// LinkTableColumns are the fixed leading columns of any dedicated link
// table, ahead of whatever link-property columns follow.
const (
	SourceColumn = "source"
	TargetColumn = "target"
)

// Resolve determines where ptr's values are stored (§4.3). An error is
// returned for a computable or derived pointer (it has no storage) and
// for a pointer that is not well-formed against sch: a target that is
// neither in sch nor a built-in scalar, or an unknown source. Callers
// (package delta's emitters) check HasStorage before calling Resolve so
// that the storage-less case never reaches it.
func Resolve(ptr *schema.Pointer, sch *schema.Schema) (*Info, error) {
	if !ptr.IsStorable() {
		return nil, fmt.Errorf("storage: pointer %s has no physical storage (computable or derived)", ptr.QualifiedName())
	}

	target, ok := sch.ByName(ptr.Target)
	if !ok && !schema.IsBuiltinScalar(ptr.Target) {
		return nil, fmt.Errorf("storage: pointer %s targets unknown type %s", ptr.QualifiedName(), ptr.Target)
	}

	if needsLinkTable(ptr) {
		return &Info{
			Kind:   LinkTable,
			Table:  linkTableName(ptr),
			Column: TargetColumn,
		}, nil
	}

	columnType := ptr.Target
	if _, isObj := target.(schema.ObjectType); isObj {
		// A single, inline link stores the target's identity column.
		columnType = schema.NewQualName("std", "uuid")
	}

	source, ok := sch.ByName(ptr.Source)
	if !ok {
		return nil, fmt.Errorf("storage: pointer %s has unknown source %s", ptr.QualifiedName(), ptr.Source)
	}

	return &Info{
		Kind:       SourceInline,
		Table:      source.QualifiedName(),
		Column:     ptr.QualifiedName().Name,
		ColumnType: columnType,
	}, nil
}

// HasStorage reports whether ptr occupies any physical storage at all,
// letting callers skip Resolve entirely for computable/derived
// pointers without treating the absence of storage as an error.
func HasStorage(ptr *schema.Pointer) bool {
	return ptr.IsStorable()
}

// needsLinkTable implements the §4.3 rule: "A link, a multi pointer, or
// a link with link properties is stored in a dedicated link table."
func needsLinkTable(ptr *schema.Pointer) bool {
	if ptr.Cardinality.IsMulti() {
		return true
	}
	if ptr.IsLink && len(ptr.LinkProperties) > 0 {
		return true
	}
	return false
}

// linkTableName derives the link table's name from its source and
// pointer names — e.g. "default::User" + "friends" ->
// "default::User@friends".
func linkTableName(ptr *schema.Pointer) schema.Name {
	return schema.NewQualName(ptr.Source.Module, ptr.Source.Name+"@"+ptr.QualifiedName().Name)
}

// LinkPropertyColumn is the column name a link property occupies within
// its pointer's link table.
func LinkPropertyColumn(propName string) string {
	return propName
}
