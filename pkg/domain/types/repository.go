package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// RepositoryID identifies a monitored project as "owner/name"
type RepositoryID string

func (x RepositoryID) String() string { return string(x) }

// Owner returns the part before the slash
func (x RepositoryID) Owner() string {
	owner, _, _ := strings.Cut(string(x), "/")
	return owner
}

// Name returns the part after the slash
func (x RepositoryID) Name() string {
	_, name, _ := strings.Cut(string(x), "/")
	return name
}

// Validate checks that the identifier has exactly one non-empty owner and name
func (x RepositoryID) Validate() error {
	owner, name, ok := strings.Cut(string(x), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return goerr.New("repository must be in owner/name form",
			goerr.V("repository", string(x)),
			goerr.T(ErrTagInvalidConfig),
		)
	}
	return nil
}
