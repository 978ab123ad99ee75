/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package splitter turns the text of an SQL script into the ordered list of statements
// that are sent to the database one by one.
//
// Three strategies are provided:
//   - Semicolon splits on every ";" (MySQL, PostgreSQL, SQLite).
//   - BatchSeparator splits on lines holding only a separator token, "GO" for MSSQL.
//   - Firebird understands string literals, comments, SET TERM and PSQL blocks.
//
// All strategies return trimmed statements in source order and never return empty ones.
// A script without statements yields an empty slice.
package splitter

import (
	"strings"
)

// Splitter splits a script into executable statements.
type Splitter interface {
	Split(script string) []string
}

// Func is an adapter that allows using an ordinary function as a Splitter.
type Func func(script string) []string

// Split calls f(script).
func (f Func) Split(script string) []string {
	return f(script)
}

// DefaultBatchSeparator is the batch separator used by MSSQL tooling.
const DefaultBatchSeparator = "GO"

// Predefined splitters.
var (
	Semicolon Splitter = Func(SplitSemicolon)
	MSSQL     Splitter = BatchSeparator(DefaultBatchSeparator)
	Firebird  Splitter = Func(SplitFirebird)
)

// SplitSemicolon splits the script on every ";".
// A ";" inside a string literal or a comment is not recognized and splits the script as well.
func SplitSemicolon(script string) []string {
	return nonEmpty(strings.Split(script, ";"))
}

// BatchSeparator returns a line-based splitter for the given separator token.
//
// A line is a separator when, after a trailing "\r" and surrounding whitespace are removed,
// it equals the token (case-insensitive) or it is the token followed by optional whitespace
// and a "--" comment. The token anywhere else is ordinary script content.
func BatchSeparator(token string) Splitter {
	return Func(func(script string) []string {
		return splitBatches(script, token)
	})
}

func splitBatches(script, token string) []string {
	var batches []string
	var cur strings.Builder
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if isSeparatorLine(line, token) {
			batches = append(batches, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	batches = append(batches, cur.String())
	return nonEmpty(batches)
}

func isSeparatorLine(line, token string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(token) || !strings.EqualFold(trimmed[:len(token)], token) {
		return false
	}
	rest := strings.TrimLeft(trimmed[len(token):], " \t")
	return rest == "" || strings.HasPrefix(rest, "--")
}

func nonEmpty(parts []string) []string {
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			stmts = append(stmts, p)
		}
	}
	return stmts
}
