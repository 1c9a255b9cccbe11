package delta

import (
	"fmt"
	"strings"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
)

// GenerateReferentialTriggers rebuilds the DELETE triggers backing
// target's inbound links, per spec.md §4.5 "Referential actions" (C9):
// up to four triggers — {immediate, deferred} x {inline-column links,
// link-table links} — one AFTER DELETE trigger per combination that
// actually has a policy requiring it, grouped by OnTargetDelete policy.
// Existing triggers of the same generated names are dropped first so
// this is safe to call unconditionally whenever the inbound link set or
// its policies change (addition/removal of an inbound link, policy
// change, or a rebase altering target's descendant set).
// Grounded on internal/diff/trigger.go's CREATE/DROP TRIGGER pairing,
// extended with the policy-by-policy body generation the teacher never
// needed (it only diffs already-existing FK-backed triggers).
func GenerateReferentialTriggers(target *schema.ObjectType, sch *schema.Schema) []dbops.Op {
	if target.IsCompoundType() || target.IsAbstract() {
		return nil
	}
	links := elideInheritedRestricts(inboundLinks(target.QualifiedName(), sch), sch)
	if len(links) == 0 {
		return dropAllReferentialTriggers(target)
	}

	var ops []dbops.Op
	for _, immediate := range []bool{true, false} {
		for _, inline := range []bool{true, false} {
			group := filterLinks(links, sch, immediate, inline)
			name := triggerName(target.QualifiedName(), immediate, inline)
			ops = append(ops, dbops.Op{
				SQL:         fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s;", dbops.QuoteIdent(name), qualifiedTable(target.QualifiedName())),
				Description: fmt.Sprintf("drop stale referential trigger %s", name),
			})
			if len(group) == 0 {
				continue
			}
			body := triggerBody(target, group, sch)
			timing := "AFTER"
			constraintClause := ""
			if !immediate {
				constraintClause = "CONSTRAINT "
				timing = "AFTER"
			}
			fnName := dbops.QuoteIdent(name + "_fn")
			ops = append(ops,
				dbops.Op{
					SQL: fmt.Sprintf(
						"CREATE OR REPLACE FUNCTION %s() RETURNS trigger LANGUAGE plpgsql AS $$\nBEGIN\n%s\n  RETURN OLD;\nEND;\n$$;",
						fnName, body),
					Description: fmt.Sprintf("create referential trigger function %s", name),
				},
				dbops.Op{
					SQL: fmt.Sprintf(
						"CREATE %sTRIGGER %s %s DELETE ON %s %sFOR EACH ROW EXECUTE FUNCTION %s();",
						constraintClause, dbops.QuoteIdent(name), timing, qualifiedTable(target.QualifiedName()),
						deferredClause(!immediate), fnName),
					Description: fmt.Sprintf("create referential trigger %s", name),
				},
			)
		}
	}
	return ops
}

func deferredClause(deferred bool) string {
	if !deferred {
		return ""
	}
	return "DEFERRABLE INITIALLY DEFERRED "
}

func dropAllReferentialTriggers(target *schema.ObjectType) []dbops.Op {
	var ops []dbops.Op
	for _, immediate := range []bool{true, false} {
		for _, inline := range []bool{true, false} {
			name := triggerName(target.QualifiedName(), immediate, inline)
			ops = append(ops, dbops.Op{
				SQL:         fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s;", dbops.QuoteIdent(name), qualifiedTable(target.QualifiedName())),
				Description: fmt.Sprintf("drop stale referential trigger %s", name),
			})
		}
	}
	return ops
}

func triggerName(target schema.Name, immediate, inline bool) string {
	timing := "deferred"
	if immediate {
		timing = "immediate"
	}
	storageTag := "linktable"
	if inline {
		storageTag = "inline"
	}
	return fmt.Sprintf("%s_del_%s_%s", target.Name, timing, storageTag)
}

func qualifiedTable(n schema.Name) string {
	return dbops.QualifyIdent(n.Module, n.Name)
}

func inboundLinks(target schema.Name, sch *schema.Schema) []schema.Pointer {
	var out []schema.Pointer
	for _, obj := range sch.AllObjects() {
		if p, ok := obj.(schema.Pointer); ok && p.IsLink && p.Target.Equal(target) {
			out = append(out, p)
		}
	}
	return out
}

// elideInheritedRestricts drops a Restrict/DeferredRestrict pointer
// from the set a target's triggers must cover when an ancestor type
// already declares the same-named pointer with the same policy — per
// §4.5 "Restrict-policy inherited links are elided — inheritance views
// already cover them": the ancestor's own EXISTS check already reads
// through its inheritance view, which already includes this
// descendant's rows, so a second, descendant-scoped check would be
// redundant.
func elideInheritedRestricts(links []schema.Pointer, sch *schema.Schema) []schema.Pointer {
	out := make([]schema.Pointer, 0, len(links))
	for _, p := range links {
		if p.OnDelete != schema.Restrict && p.OnDelete != schema.DeferredRestrict {
			out = append(out, p)
			continue
		}
		if hasAncestorDeclaringSamePointer(p, links, sch) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasAncestorDeclaringSamePointer(p schema.Pointer, links []schema.Pointer, sch *schema.Schema) bool {
	srcObj, ok := sch.ByName(p.Source)
	if !ok {
		return false
	}
	src, ok := srcObj.(schema.ObjectType)
	if !ok {
		return false
	}
	ancestors := map[schema.Name]bool{}
	for _, a := range src.Ancestors() {
		if !a.Equal(src.QualifiedName()) {
			ancestors[a] = true
		}
	}
	if len(ancestors) == 0 {
		return false
	}
	for _, q := range links {
		if q.ID() == p.ID() {
			continue
		}
		if q.OnDelete != p.OnDelete {
			continue
		}
		if q.QualifiedName().Name != p.QualifiedName().Name {
			continue
		}
		if ancestors[q.Source] {
			return true
		}
	}
	return false
}

func filterLinks(links []schema.Pointer, sch *schema.Schema, immediate, inline bool) []schema.Pointer {
	var out []schema.Pointer
	for _, p := range links {
		isImmediate := p.OnDelete == schema.Restrict || p.OnDelete == schema.Allow || p.OnDelete == schema.DeleteSource
		if isImmediate != immediate {
			continue
		}
		info, err := storage.Resolve(&p, sch)
		if err != nil {
			continue
		}
		isInline := info.Kind == storage.SourceInline
		if isInline != inline {
			continue
		}
		out = append(out, p)
	}
	return out
}

// triggerBody synthesizes the per-policy trigger body, grouping the
// group's links by policy exactly as spec.md §4.5 describes:
// Restrict/DeferredRestrict raise if a referencing row still exists,
// Allow removes the reference (and raises if that would empty a
// required multi link), DeleteSource cascades into the source table.
func triggerBody(target *schema.ObjectType, group []schema.Pointer, sch *schema.Schema) string {
	var b strings.Builder
	for _, p := range group {
		info, err := storage.Resolve(&p, sch)
		if err != nil {
			continue
		}
		sourceTable := qualifiedTable(p.Source)
		// Restrict-style checks read through the source's inheritance
		// view so an inline pointer declared on an abstract ancestor
		// still sees every concrete descendant's rows (§4.5
		// "referencing rows across descendants").
		sourceView := qualifiedTable(schema.NewQualName(p.Source.Module, p.Source.Name+"_view"))
		switch p.OnDelete {
		case schema.Restrict, schema.DeferredRestrict:
			if info.Kind == storage.SourceInline {
				fmt.Fprintf(&b, "  IF EXISTS (SELECT 1 FROM %s WHERE %s = OLD.id) THEN\n", sourceView, dbops.QuoteIdent(info.Column))
			} else {
				fmt.Fprintf(&b, "  IF EXISTS (SELECT 1 FROM %s WHERE %s = OLD.id) THEN\n",
					qualifiedTable(info.Table), dbops.QuoteIdent(storage.TargetColumn))
			}
			fmt.Fprintf(&b, "    RAISE EXCEPTION 'cannot delete %%, still referenced by %s' , OLD.id USING ERRCODE = '23503';\n", p.QualifiedName())
			b.WriteString("  END IF;\n")
		case schema.Allow:
			if info.Kind == storage.SourceInline {
				fmt.Fprintf(&b, "  UPDATE %s SET %s = NULL WHERE %s = OLD.id;\n", sourceTable, dbops.QuoteIdent(info.Column), dbops.QuoteIdent(info.Column))
			} else {
				fmt.Fprintf(&b, "  DELETE FROM %s WHERE %s = OLD.id;\n", qualifiedTable(info.Table), dbops.QuoteIdent(storage.TargetColumn))
				if p.Cardinality.IsRequired() {
					fmt.Fprintf(&b,
						"  IF EXISTS (SELECT 1 FROM %s s WHERE NOT EXISTS (SELECT 1 FROM %s lt WHERE lt.%s = s.id)) THEN\n"+
							"    RAISE EXCEPTION 'deleting target would leave a source with no remaining value for required link %s';\n  END IF;\n",
						sourceView, qualifiedTable(info.Table), dbops.QuoteIdent(storage.SourceColumn), p.QualifiedName())
				}
			}
		case schema.DeleteSource:
			if info.Kind == storage.SourceInline {
				fmt.Fprintf(&b, "  DELETE FROM %s WHERE %s = OLD.id;\n", sourceTable, dbops.QuoteIdent(info.Column))
			} else {
				fmt.Fprintf(&b, "  DELETE FROM %s WHERE id IN (SELECT %s FROM %s WHERE %s = OLD.id);\n",
					sourceTable, dbops.QuoteIdent(storage.SourceColumn), qualifiedTable(info.Table), dbops.QuoteIdent(storage.TargetColumn))
			}
		}
	}
	return b.String()
}
