/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import (
	"errors"

	"github.com/acronis/go-dbupgrade/dialect"
	"github.com/acronis/go-dbupgrade/repository"
)

// Status is the outcome of a run.
type Status int

// Run statuses.
const (
	StatusSuccess Status = iota
	StatusError
	StatusNonExistingScriptsFolder
	StatusUnknownDatabase
	StatusNonExistingVersionFolder
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusError:
		return "Error"
	case StatusNonExistingScriptsFolder:
		return "NonExistingScriptsFolder"
	case StatusUnknownDatabase:
		return "UnknownDatabase"
	case StatusNonExistingVersionFolder:
		return "NonExistingVersionFolder"
	}
	return "Unknown"
}

// StatusOf maps an error returned by New or Run to a status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, repository.ErrMissingScriptsFolder):
		return StatusNonExistingScriptsFolder
	case errors.Is(err, ErrUnknownDialect), errors.Is(err, dialect.ErrUnsupported):
		return StatusUnknownDatabase
	case errors.Is(err, repository.ErrUnknownVersion):
		return StatusNonExistingVersionFolder
	}
	return StatusError
}
