package ir

import (
	"encoding/json"

	"github.com/arcwell-db/arcql/schema"
)

// ExprBox is the lazily-compiled expression a schema.Pointer's
// Computable/Default, a schema.Constraint's Expr, or a
// schema.Function's Body carries around. Only Text is ever persisted;
// Parsed and Compiled are rebuilt on demand by Compile and must never
// be serialized, since a parse tree and a compiled arena handle are
// only meaningful within the process that produced them. Grounded on
// internal/schema/ir.go's pattern of caching a compiled IR fragment on
// a schema object and invalidating it rather than recomputing eagerly.
type ExprBox struct {
	Text string

	// Parsed is deliberately untyped: parsing source text into an AST is
	// a declared Non-goal, so this field is populated (when it is at
	// all) by a caller-supplied front end and never inspected here.
	Parsed any

	Compiled *Set
	Refs     []schema.Name
}

// NewExprBox wraps raw source text, uncompiled.
func NewExprBox(text string) *ExprBox {
	return &ExprBox{Text: text}
}

// Compile lazily populates Compiled via build, caching the result.
// Subsequent calls are no-ops once Compiled is non-nil.
func (b *ExprBox) Compile(build func(text string) (*Set, []schema.Name, error)) error {
	if b.Compiled != nil {
		return nil
	}
	set, refs, err := build(b.Text)
	if err != nil {
		return err
	}
	b.Compiled = set
	b.Refs = refs
	return nil
}

// exprBoxWire is the only form of ExprBox that ever crosses a
// serialization boundary.
type exprBoxWire struct {
	Text string `json:"text"`
}

// MarshalJSON persists Text only, dropping the unserializable lazy
// fields.
func (b ExprBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(exprBoxWire{Text: b.Text})
}

// UnmarshalJSON restores Text, leaving Parsed/Compiled nil so the next
// Compile call rebuilds them.
func (b *ExprBox) UnmarshalJSON(data []byte) error {
	var w exprBoxWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Text = w.Text
	b.Parsed = nil
	b.Compiled = nil
	b.Refs = nil
	return nil
}
