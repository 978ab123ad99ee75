/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"errors"

	"github.com/acronis/go-dbupgrade/upgrader"
)

const (
	exitCodeSuccess                  = 0
	exitCodeError                    = 160
	exitCodeNonExistingScriptsFolder = 270
	exitCodeUnknownDatabase          = 490
	exitCodeNonExistingVersionFolder = 520
)

var statusExitCodes = map[upgrader.Status]int{
	upgrader.StatusSuccess:                  exitCodeSuccess,
	upgrader.StatusError:                    exitCodeError,
	upgrader.StatusNonExistingScriptsFolder: exitCodeNonExistingScriptsFolder,
	upgrader.StatusUnknownDatabase:          exitCodeUnknownDatabase,
	upgrader.StatusNonExistingVersionFolder: exitCodeNonExistingVersionFolder,
}

var statusMessages = map[upgrader.Status]string{
	upgrader.StatusSuccess:                  "Database has been successfully updated.",
	upgrader.StatusError:                    "Database was not updated.",
	upgrader.StatusNonExistingScriptsFolder: "Error: Folder with sql scripts doesn't exist.",
	upgrader.StatusUnknownDatabase:          "Error: Unknown database.",
	upgrader.StatusNonExistingVersionFolder: "Error: Version folder doesn't exist.",
}

// statusError is an error with the status of the run it ended.
type statusError struct {
	status upgrader.Status
	err    error
}

func (e *statusError) Error() string {
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func exitCodeOf(err error) int {
	if err == nil {
		return exitCodeSuccess
	}
	var se *statusError
	if errors.As(err, &se) {
		return statusExitCodes[se.status]
	}
	return statusExitCodes[upgrader.StatusOf(err)]
}
