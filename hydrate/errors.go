package hydrate

import "github.com/pkg/errors"

var (
	ErrDuplicateHash = errors.New("hydrate: duplicate component hash")
	ErrDuplicateName = errors.New("hydrate: duplicate component name")
	ErrEmptyHash     = errors.New("hydrate: component hash is empty")
	ErrClientOnly    = errors.New("hydrate: component has no server renderer")
	ErrInvalidProps  = errors.New("hydrate: invalid placeholder props")
	ErrDetached      = errors.New("hydrate: insertion target has no parent")
)
