package dbops

import "strings"

// QuoteIdent double-quotes a Postgres identifier, escaping any embedded
// double quote by doubling it. Every emitter routes table, column, and
// constraint names through this before interpolating them into SQL
// text, per C9's "strict identifier/literal quoting discipline."
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QuoteLiteral single-quotes a SQL string literal, escaping embedded
// single quotes by doubling them. Used for constant values interpolated
// into generated DEFAULT/CHECK/trigger bodies.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QualifyIdent joins a schema-qualified pair, quoting each part
// independently (never quoting "schema.table" as a single token).
func QualifyIdent(namespace, name string) string {
	if namespace == "" {
		return QuoteIdent(name)
	}
	return QuoteIdent(namespace) + "." + QuoteIdent(name)
}
