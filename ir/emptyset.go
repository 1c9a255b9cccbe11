package ir

// NewEmptySet allocates an untyped `{}` literal in a, returning its
// Handle. Its Type stays nil until CommonType (package infer) sees a
// sibling expression to borrow a type from and amends it in place via
// Arena.Replace (§4.2).
func NewEmptySet(a *Arena, path *PathId) Handle {
	return a.Alloc(&Set{PathId: path})
}

// AmendEmptySet installs typ on the set at h and re-derives its PathId
// into the synthetic "__derived__" namespace, so the amended set no
// longer collides path-identity-wise with any genuinely empty set that
// remains unresolved elsewhere in the same query.
func AmendEmptySet(a *Arena, h Handle, typ *TypeRef) {
	s := a.Get(h)
	amended := &Set{
		PathId: s.PathId.WithNamespace("__derived__"),
		Type:   typ,
		Expr:   s.Expr,
		RPtr:   s.RPtr,
		Shape:  s.Shape,
	}
	a.Replace(h, amended)
}
