package schema

import "errors"

// Sentinel errors surfaced by Schema mutation and lookup methods. Callers
// use errors.Is to classify failures at command boundaries (§7);
// errmech further translates backend-side SQLSTATE failures using a
// parallel set of sentinels in package errmech.
var (
	// ErrUnknownObject is returned when a command references a name or id
	// that does not resolve in the current schema snapshot.
	ErrUnknownObject = errors.New("unknown schema object")

	// ErrDuplicateDefinition is returned when a Create command's name
	// already resolves to an existing object of a conflicting kind.
	ErrDuplicateDefinition = errors.New("duplicate definition")

	// ErrReferentialIntegrity is returned when a Delete command targets
	// an object that is still referenced elsewhere and was not issued
	// with ifUnused semantics.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
