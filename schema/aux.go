package schema

// Constraint, Index, Function, Operator, Cast, and Annotation are named
// auxiliary objects that reference a Subject (§3.2).

type Constraint struct {
	Base
	Subject   Name
	Expr      ExprRef
	Args      []ExprRef
	Delegated bool // true if inherited and re-validated per descendant
}

type Index struct {
	Base
	Subject Name
	Exprs   []ExprRef
	Using   string // access method, e.g. "btree", "gin"
}

type FunctionParam struct {
	Name     string
	Type     Name
	Variadic bool
	Default  *ExprRef
}

type Function struct {
	Base
	Params     []FunctionParam
	ReturnType Name
	ReturnsSet bool
	Body       ExprRef // source-language body, compiled lazily via ir.ExprBox
	Volatility string  // Immutable | Stable | Volatile
}

// HasObjectOverload reports whether any parameter is typed as an
// ObjectType (rather than a scalar/collection), which triggers the
// dispatcher-function generation path in delta's function emitter
// (§4.5 "Functions").
func (f Function) HasObjectOverload(sch *Schema) bool {
	for _, p := range f.Params {
		if t, ok := sch.ByName(p.Type); ok {
			if _, isObj := t.(ObjectType); isObj {
				return true
			}
		}
	}
	return false
}

type Operator struct {
	Base
	Kind       string // "infix" | "prefix" | "postfix" | "ternary"
	Params     []FunctionParam
	ReturnType Name
	Body       ExprRef
}

type Cast struct {
	Base
	From       Name
	To         Name
	Implicit   bool
	Assignment bool
	Body       ExprRef
}

type Annotation struct {
	Base
	Subject Name
	Value   string
}
