/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import "errors"

// Errors returned by the upgrader.
var (
	ErrUnknownDialect     = errors.New("unknown database dialect")
	ErrStatementExecution = errors.New("statement execution failed")
	ErrRecordFailed       = errors.New("recording script in changelog failed")
	ErrContentTransform   = errors.New("script content transform failed")
)
