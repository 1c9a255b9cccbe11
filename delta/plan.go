// Package delta dispatches a schema.Delta against a schema.Schema
// snapshot, producing the next snapshot plus an ordered plan of
// backend operations. Grounded on internal/diff/diff.go's three-pass
// generateDropSQL/generateCreateSQL/generateModifySQL structure,
// generalized to walk an explicit schema.Command tree instead of
// diffing two already-realized catalogs.
package delta

import (
	"fmt"

	"github.com/arcwell-db/arcql/delta/dbops"
	"github.com/arcwell-db/arcql/schema"
	"github.com/arcwell-db/arcql/storage"
	"github.com/arcwell-db/arcql/views"
)

// Plan is the ordered result of dispatching a Delta: the backend
// operations to run, in the order they must run.
type Plan struct {
	buf dbops.Buffer
}

// Ops returns the accumulated operations in dispatch order.
func (p *Plan) Ops() []dbops.Op {
	return p.buf.Ops()
}

// collect appends op to the plan, annotated with a human-readable
// description — the same "diffCollector.collect" accumulator pattern
// the teacher uses, renamed to fit a Command-tree walk instead of an
// IR-diff walk.
func (p *Plan) collect(sql, description string) {
	p.buf.AppendSQL(sql, description)
}

// dispatcher threads the mutable state a single Dispatch call needs
// across every emitter: the plan being built, the inheritance view
// manager, and the set of object types touched so far (for
// flushCascade at the end).
type dispatcher struct {
	plan    *Plan
	views   *views.Manager
	touched map[schema.Name]bool
}

// Dispatch walks d's commands in Prerequisites -> Main -> Caused order
// against sch, routing each Command by its Subject.Kind to the
// matching emit* function, and returns the resulting schema snapshot
// alongside the accumulated Plan.
func Dispatch(d *schema.Delta, sch *schema.Schema) (*Plan, *schema.Schema, error) {
	disp := &dispatcher{
		plan:    &Plan{},
		views:   views.NewManager(),
		touched: map[schema.Name]bool{},
	}

	var dispatchErr error
	d.Walk(func(cmd *schema.Command) {
		if dispatchErr != nil {
			return
		}
		next, err := disp.dispatchOne(cmd, sch)
		if err != nil {
			dispatchErr = err
			return
		}
		sch = next
	})
	if dispatchErr != nil {
		return nil, nil, dispatchErr
	}

	disp.flushCascade(sch)
	return disp.plan, sch, nil
}

func (disp *dispatcher) dispatchOne(cmd *schema.Command, sch *schema.Schema) (*schema.Schema, error) {
	switch cmd.Subject.Kind {
	case schema.KindObjectType:
		return disp.emitObjectType(cmd, sch)
	case schema.KindPointer:
		return disp.emitPointer(cmd, sch)
	case schema.KindScalarType:
		return disp.emitScalarType(cmd, sch)
	case schema.KindConstraint:
		return disp.emitConstraint(cmd, sch)
	case schema.KindIndex:
		return disp.emitIndex(cmd, sch)
	case schema.KindFunction:
		return disp.emitFunction(cmd, sch)
	case schema.KindOperator:
		return disp.emitOperator(cmd, sch)
	case schema.KindCast:
		return disp.emitCast(cmd, sch)
	case schema.KindAnnotation, schema.KindCollection, schema.KindModule:
		return sch, nil
	default:
		return nil, fmt.Errorf("delta: no emitter registered for object kind %d", cmd.Subject.Kind)
	}
}

func (disp *dispatcher) markTouched(name schema.Name) {
	disp.touched[name] = true
}

// flushCascade refreshes every ancestor inheritance view whose column
// projection may have changed because of a type touched during this
// delta, batched once per delta rather than once per command (§4.6),
// then rebuilds each touched object type's referential-action triggers
// (C9) since an inbound link's target, policy, or descendant set may
// have just changed.
func (disp *dispatcher) flushCascade(sch *schema.Schema) {
	if len(disp.touched) == 0 {
		return
	}
	names := make([]schema.Name, 0, len(disp.touched))
	for n := range disp.touched {
		names = append(names, n)
	}
	for _, op := range disp.views.Cascade(names, sch) {
		disp.plan.collect(op.SQL, op.Description)
	}
	for _, n := range names {
		obj, ok := sch.ByName(n)
		if !ok {
			continue
		}
		ot, ok := obj.(schema.ObjectType)
		if !ok {
			continue
		}
		for _, op := range GenerateReferentialTriggers(&ot, sch) {
			disp.plan.collect(op.SQL, op.Description)
		}
	}
}

// resolveStorage is a thin convenience wrapper so emitters don't each
// import package storage directly for the single common call shape.
func resolveStorage(ptr *schema.Pointer, sch *schema.Schema) (*storage.Info, error) {
	return storage.Resolve(ptr, sch)
}
