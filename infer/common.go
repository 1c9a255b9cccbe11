package infer

import (
	"github.com/arcwell-db/arcql/ir"
	"github.com/arcwell-db/arcql/schema"
)

// numericRank orders the built-in numeric scalars along the implicit
// up-cast lattice used by FindCommonImplicitlyCastableType. Two
// numeric types have a common implicit type iff one's rank reaches the
// other's; the common type is the higher-ranked one.
var numericRank = map[string]int{
	"int16": 0, "int32": 1, "int64": 2,
	"bigint": 3, "float32": 4, "float64": 5, "decimal": 6,
}

// FindCommonImplicitlyCastableType returns the scalar both a and b can
// be implicitly cast to, or ok=false if none exists. Ported from
// edb/schema/types.py's find_common_implicitly_castable_type, reduced
// to the built-in numeric lattice plus the identity case — user-defined
// scalar casts are out of scope for this compiler (declared Non-goal:
// no arbitrary user scalar cast graph).
func FindCommonImplicitlyCastableType(a, b schema.Name) (schema.Name, bool) {
	if a.Equal(b) {
		return a, true
	}
	if a.Module != "std" || b.Module != "std" {
		return schema.Name{}, false
	}
	ra, aok := numericRank[a.Name]
	rb, bok := numericRank[b.Name]
	if aok && bok {
		if ra >= rb {
			return a, true
		}
		return b, true
	}
	return schema.Name{}, false
}

// CommonType determines the type every set in sets converges to,
// following edb/edgeql/compiler/inference/types.py's
// _infer_common_type: partition into object / scalar-or-collection
// kinds, fold scalars pairwise through FindCommonImplicitlyCastableType,
// and for objects take the first nearest common ancestor. Any set whose
// type was still nil (an EmptySet) is amended in place to the resolved
// common type once found.
func CommonType(env *Env, handles []ir.Handle) (schema.Type, error) {
	if len(handles) == 0 {
		bug("CommonType called with no operands")
	}

	var resolved []schema.Type
	var empties []ir.Handle
	for _, h := range handles {
		t, err := env.TypeOf(h)
		if err != nil {
			return nil, err
		}
		if t == nil {
			empties = append(empties, h)
			continue
		}
		resolved = append(resolved, t)
	}
	if len(resolved) == 0 {
		return nil, &QueryError{Msg: "cannot determine type of an expression consisting only of empty sets"}
	}

	var common schema.Type
	if _, isObj := resolved[0].(schema.ObjectType); isObj {
		objs := make([]schema.Type, 0, len(resolved))
		for _, t := range resolved {
			if _, ok := t.(schema.ObjectType); !ok {
				return nil, &QueryError{Msg: "cannot mix object and non-object types in a common-type context"}
			}
			objs = append(objs, t)
		}
		ncas := env.Schema.NearestCommonAncestors(objs)
		if len(ncas) == 0 {
			return nil, &QueryError{Msg: "no common ancestor type among operands"}
		}
		common = ncas[0]
	} else {
		name := resolved[0].QualifiedName()
		for _, t := range resolved[1:] {
			if _, isObj := t.(schema.ObjectType); isObj {
				return nil, &QueryError{Msg: "cannot mix object and non-object types in a common-type context"}
			}
			n, ok := FindCommonImplicitlyCastableType(name, t.QualifiedName())
			if !ok {
				return nil, &QueryError{Msg: "operands of " + name.String() + " and " + t.QualifiedName().String() + " have no common implicit cast"}
			}
			name = n
		}
		obj, ok := env.Schema.ByName(name)
		if !ok {
			bug("common type %s resolved to a name not present in the schema", name)
		}
		common = obj.(schema.Type)
	}

	ref := ir.NewTypeRef(common)
	for _, h := range empties {
		ir.AmendEmptySet(env.Arena, h, ref)
		env.SetTypes[h] = common
	}
	return common, nil
}
