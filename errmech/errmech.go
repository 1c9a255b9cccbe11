// Package errmech translates backend SQLSTATE failures into the
// compiler's domain error types (C10, spec.md §4.7 and §6.2). It has no
// Go counterpart in the teacher repo — internal/diff never runs
// against a live backend connection at translation time — so it is
// ported idiomatically from original_source/edb/server/compiler/errormech.py,
// keeping that file's two-pass shape (schema-free classification, then
// a schema-aware reverse lookup for the handful of codes that need
// pointer/object-type display names) but expressed as Go sentinel
// errors and a regex registry instead of a Python exception hierarchy.
package errmech

import (
	"fmt"
	"regexp"

	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// ErrorDetails is the parsed shape of a backend error, populated by the
// caller from whatever driver-level error fields pgx exposes (SQLSTATE
// plus the PostgreSQL "detail"/"constraint name" fields). package
// errmech never talks to pgx directly — it only classifies an already
// parsed struct, keeping this package free of the jackc/pgx/v5 import
// that cluster and any future query executor would carry.
type ErrorDetails struct {
	Code           string
	Message        string
	Detail         string
	DetailJSON     string
	SchemaName     string
	TableName      string
	ColumnName     string
	ConstraintName string
}

// DomainError is the translated result: a stable Kind plus a
// human-readable message, optionally decorated with the pointer or
// object-type display name the second pass resolved.
type DomainError struct {
	Kind      Kind
	Message   string
	Retryable bool
}

func (e *DomainError) Error() string { return e.Message }

// Kind enumerates the domain error classes named in spec.md §6.2 and §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingRequired
	KindConstraintViolation
	KindTransactionSerialization
	KindTransactionDeadlock
	KindInvalidValue
	KindNumericOutOfRange
	KindUnknownDatabase
	KindDuplicateDatabase
	KindCardinalityViolation
)

func (k Kind) String() string {
	switch k {
	case KindMissingRequired:
		return "MissingRequiredError"
	case KindConstraintViolation:
		return "ConstraintViolationError"
	case KindTransactionSerialization:
		return "TransactionSerializationError"
	case KindTransactionDeadlock:
		return "TransactionDeadlockError"
	case KindInvalidValue:
		return "InvalidValueError"
	case KindNumericOutOfRange:
		return "NumericOutOfRangeError"
	case KindUnknownDatabase:
		return "UnknownDatabaseError"
	case KindDuplicateDatabase:
		return "DuplicateDatabaseDefinitionError"
	case KindCardinalityViolation:
		return "CardinalityViolationError"
	default:
		return "UnknownError"
	}
}

// schemaRequired marks the first pass's internal signal that no
// context-free classification exists and the second, schema-aware pass
// must run (errormech.py's get_error_class_from_code raising
// SchemaRequired internally before the caller re-invokes with a
// catalog).
var errSchemaRequired = fmt.Errorf("errmech: schema required to classify error")

// codeTable is the first, schema-free pass: spec.md §6.2's table,
// verbatim. A handful of codes (23502, 23505) need the schema to
// produce their final message and are routed to errSchemaRequired here
// so Translate's second pass can retry them with sch != nil.
var codeTable = map[string]func(*ErrorDetails) (*DomainError, error){
	"40001": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindTransactionSerialization, Message: "could not serialize access due to concurrent update", Retryable: true}, nil
	},
	"40P01": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindTransactionDeadlock, Message: "deadlock detected", Retryable: true}, nil
	},
	"22P02": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindInvalidValue, Message: translateTypeName(d.Message), Retryable: false}, nil
	},
	"22003": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindNumericOutOfRange, Message: d.Message, Retryable: false}, nil
	},
	"3D000": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindUnknownDatabase, Message: d.Message, Retryable: false}, nil
	},
	"42P04": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindDuplicateDatabase, Message: d.Message, Retryable: false}, nil
	},
	"21000": func(d *ErrorDetails) (*DomainError, error) {
		return &DomainError{Kind: KindCardinalityViolation, Message: d.Message, Retryable: false}, nil
	},
	"23502": func(d *ErrorDetails) (*DomainError, error) { return nil, errSchemaRequired },
	"23505": func(d *ErrorDetails) (*DomainError, error) { return nil, errSchemaRequired },
}

// Translate classifies a backend error. sch may be nil; if the
// first-pass classifier needs schema context and none was given, the
// error is returned with a generic message rather than failing — the
// caller (package delta's Dispatch, or a future query executor) is
// expected to prefer the schema-aware form by always passing the
// snapshot the failing operation ran against.
func Translate(d *ErrorDetails, sch *schema.Schema) error {
	classify, ok := codeTable[d.Code]
	if !ok {
		return &DomainError{Kind: KindUnknown, Message: d.Message, Retryable: false}
	}
	de, err := classify(d)
	if err == nil {
		return de
	}
	if err != errSchemaRequired {
		return err
	}
	return translateWithSchema(d, sch)
}

// translateWithSchema is errormech.py's second pass: reverse-map
// table_name/column_name to a pointer/object-type display name using
// the same storage.Resolve the delta emitters used to lay the pointer
// out in the first place, producing e.g. "missing value for required
// property 'email' of object type 'default::User'".
func translateWithSchema(d *ErrorDetails, sch *schema.Schema) error {
	switch d.Code {
	case "23502":
		verbose := "<unknown>"
		if sch != nil {
			if ptr, ot, ok := findPointerByColumn(sch, d.TableName, d.ColumnName); ok {
				verbose = fmt.Sprintf("%s '%s' of object type '%s'", pointerKindWord(ptr), ptr.QualifiedName().Name, ot.QualifiedName())
			}
		}
		return &DomainError{
			Kind:    KindMissingRequired,
			Message: fmt.Sprintf("missing value for required %s", verbose),
		}
	case "23505":
		kind := classifyConstraint(d.ConstraintName)
		msg := d.Message
		if kind == "link" {
			msg = "unique link constraint violation"
		}
		return &DomainError{Kind: KindConstraintViolation, Message: msg}
	default:
		return &DomainError{Kind: KindUnknown, Message: d.Message}
	}
}

// findPointerByColumn scans sch for a storable pointer whose resolved
// storage.Info matches (tableName, columnName), returning it and its
// source object type. This is the reverse of storage.Resolve: rather
// than cache an index, it walks AllObjects() once per lookup since
// error translation is off the hot path (one lookup per failed DDL/DML
// statement, not per row).
func findPointerByColumn(sch *schema.Schema, tableName, columnName string) (*schema.Pointer, *schema.ObjectType, bool) {
	for _, obj := range sch.AllObjects() {
		ptr, ok := obj.(schema.Pointer)
		if !ok || !ptr.IsStorable() {
			continue
		}
		info, err := storage.Resolve(&ptr, sch)
		if err != nil || info.Kind != storage.SourceInline {
			continue
		}
		if info.Table.Name != tableName || info.Column != columnName {
			continue
		}
		srcObj, ok := sch.ByName(ptr.Source)
		if !ok {
			continue
		}
		ot, ok := srcObj.(schema.ObjectType)
		if !ok {
			continue
		}
		return &ptr, &ot, true
	}
	return nil, nil, false
}

func pointerKindWord(ptr *schema.Pointer) string {
	if ptr.IsLink {
		return "link"
	}
	return "property"
}

// translateTypeName rewrites a backend "invalid input syntax for type
// X" message using the source-language scalar name instead of the
// backend's internal type name, where recognizable; otherwise passes
// the message through unchanged.
func translateTypeName(msg string) string {
	for pgName, scalar := range pgToScalarName {
		if m := regexp.MustCompile(`invalid input syntax for type ` + regexp.QuoteMeta(pgName)).FindString(msg); m != "" {
			return fmt.Sprintf("invalid input syntax for type '%s'", scalar)
		}
	}
	return msg
}

var pgToScalarName = map[string]string{
	"uuid":                 "std::uuid",
	"boolean":              "std::bool",
	"bigint":               "std::int64",
	"integer":              "std::int32",
	"smallint":             "std::int16",
	"double precision":     "std::float64",
	"real":                 "std::float32",
	"json":                 "std::json",
	"timestamp with time zone": "std::datetime",
}

// constraintPatterns is the registry of §4.7's seven classifier keys,
// each a regex matched against a backend constraint name to decide
// which kind of integrity violation produced it. Grounded in shape on
// original_source/edb/server/compiler/errormech.py's
// constraint_errors regex table, and in Go idiom on the teacher's
// small keyed-regexp dispatch tables (e.g. internal/diff/column.go's
// needsUsingClause helper family).
var constraintPatterns = map[string]*regexp.Regexp{
	"cardinality":     regexp.MustCompile(`(?i)_cardinality_`),
	"link_target":     regexp.MustCompile(`(?i)_target_`),
	"constraint":      regexp.MustCompile(`(?i)_constraint_`),
	"newconstraint":   regexp.MustCompile(`(?i)_newconstraint_`),
	"id":              regexp.MustCompile(`(?i)_pkey$`),
	"link_target_del": regexp.MustCompile(`(?i)_target_del_`),
	"scalar":          regexp.MustCompile(`(?i)_scalar_`),
}

// classifyConstraint maps a backend constraint name to one of the
// §4.7 classifier keys, or "" if none match. The "id" key maps to
// "link" for message-selection purposes in translateWithSchema,
// because a duplicate primary key on a link table's own identity
// column surfaces as the §6.2 "unique link constraint violation" case.
func classifyConstraint(name string) string {
	if constraintPatterns["id"].MatchString(name) {
		return "link"
	}
	for key, pat := range constraintPatterns {
		if key == "id" {
			continue
		}
		if pat.MatchString(name) {
			return key
		}
	}
	return ""
}

// IsRetryable reports whether err (as returned by Translate) represents
// a transient backend condition a caller may retry outside the failed
// delta's boundary (§7 "Propagation policy").
func IsRetryable(err error) bool {
	de, ok := err.(*DomainError)
	return ok && de.Retryable
}
