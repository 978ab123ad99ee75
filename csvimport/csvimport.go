/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package csvimport expands CSV import directives of a script into INSERT statements.
//
// A directive is written on a single line, usually inside an SQL comment:
//
//	-- <CSV_IMPORT TABLE=Users; COLUMNS=Id,Name; CSV_FILE=users.csv,admins.csv; DELIMITER=,; OPERATION_ID=users;>
//
// TABLE, COLUMNS and CSV_FILE are required. DELIMITER defaults to "," ("TAB" or "\t" stand for a tab).
// OPERATION_ID defaults to an empty string. Every occurrence of the marker
//
//	{{CSV_IMPORT_SCRIPTS:users}}
//
// is replaced with one INSERT statement per data row of the CSV files, in file order.
// The first row of every file is a header and is skipped.
// CSV files are resolved relative to the folder of the script.
// Directives are removed from the result, together with the comment they are written in
// when nothing else is left on the line.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/acronis/go-dbupgrade"
	"github.com/acronis/go-dbupgrade/repository"
)

// ErrInvalidDirective is returned for a CSV import directive that cannot be used.
var ErrInvalidDirective = errors.New("invalid CSV import directive")

const (
	directivePrefix = "<CSV_IMPORT"
	markerFormat    = "{{CSV_IMPORT_SCRIPTS:%s}}"
	defaultDelim    = ','
)

// Directive attributes.
const (
	AttrTable       = "TABLE"
	AttrColumns     = "COLUMNS"
	AttrCSVFile     = "CSV_FILE"
	AttrDelimiter   = "DELIMITER"
	AttrOperationID = "OPERATION_ID"
)

// Directive is a parsed CSV import directive.
type Directive struct {
	OperationID string
	Table       string
	Columns     []string
	Files       []string
	Delimiter   rune
}

// Marker returns the text replaced with the generated statements.
func (d Directive) Marker() string {
	return fmt.Sprintf(markerFormat, d.OperationID)
}

// Option configures generated statements.
type Option func(*options)

type options struct {
	nationalLiterals bool
}

// WithNationalLiterals makes values of generated statements N'...' literals (Unicode strings of MSSQL).
func WithNationalLiterals() Option {
	return func(o *options) {
		o.nationalLiterals = true
	}
}

// ScriptTransform expands CSV import directives of the script using plain string literals.
// It matches the content transform signature of the upgrader.
func ScriptTransform(script repository.Script, content string) (string, error) {
	return Transform(filepath.Dir(script.FullPath), content)
}

// ScriptTransformFor returns a script transform generating literals suitable for the dialect.
func ScriptTransformFor(d dbupgrade.Dialect) func(script repository.Script, content string) (string, error) {
	var opts []Option
	if d == dbupgrade.DialectMSSQL {
		opts = append(opts, WithNationalLiterals())
	}
	return func(script repository.Script, content string) (string, error) {
		return Transform(filepath.Dir(script.FullPath), content, opts...)
	}
}

// Transform expands CSV import directives found in content. CSV files are looked up in dir.
func Transform(dir, content string, opts ...Option) (string, error) {
	directives, err := ParseDirectives(content)
	if err != nil {
		return "", err
	}
	if len(directives) == 0 {
		return content, nil
	}
	content = stripDirectives(content)
	for _, d := range directives {
		inserts, err := d.Inserts(dir, opts...)
		if err != nil {
			return "", fmt.Errorf("operation %q: %w", d.OperationID, err)
		}
		content = strings.ReplaceAll(content, d.Marker(), "\n"+inserts)
	}
	return content, nil
}

// stripDirectives removes directives from content. A line left with an empty comment only is dropped.
func stripDirectives(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		start, end, ok := directiveSpan(line)
		if !ok {
			kept = append(kept, line)
			continue
		}
		rest := line[:start] + line[end:]
		switch strings.Join(strings.Fields(rest), "") {
		case "", "--", "/**/":
			continue
		}
		kept = append(kept, rest)
	}
	return strings.Join(kept, "\n")
}

// directiveSpan returns the bounds of the directive written on the line, closing '>' included.
func directiveSpan(line string) (start, end int, ok bool) {
	start = strings.Index(line, directivePrefix)
	if start < 0 {
		return 0, 0, false
	}
	n := strings.IndexByte(line[start:], '>')
	if n < 0 {
		return 0, 0, false
	}
	return start, start + n + 1, true
}

// ParseDirectives returns all CSV import directives of the content in order of appearance.
func ParseDirectives(content string) ([]Directive, error) {
	var directives []Directive
	for _, line := range strings.Split(content, "\n") {
		start, end, ok := directiveSpan(line)
		if !ok {
			continue
		}
		d, err := parseDirective(line[start+len(directivePrefix) : end-1])
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}
	return directives, nil
}

func parseDirective(body string) (Directive, error) {
	attrs := make(map[string]string)
	for _, part := range strings.Split(body, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		attrs[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	d := Directive{
		OperationID: attrs[AttrOperationID],
		Table:       attrs[AttrTable],
		Columns:     splitList(attrs[AttrColumns]),
		Files:       splitList(attrs[AttrCSVFile]),
		Delimiter:   defaultDelim,
	}
	if d.Table == "" || len(d.Columns) == 0 || len(d.Files) == 0 {
		return Directive{}, fmt.Errorf("%w: %s, %s and %s attributes are required",
			ErrInvalidDirective, AttrTable, AttrColumns, AttrCSVFile)
	}
	if delim, ok := attrs[AttrDelimiter]; ok {
		r, err := parseDelimiter(delim)
		if err != nil {
			return Directive{}, err
		}
		d.Delimiter = r
	}
	return d, nil
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToUpper(s) {
	case "":
		return defaultDelim, nil
	case "TAB", `\T`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalidDirective, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Inserts builds INSERT statements for all rows of the directive's CSV files located in dir.
func (d Directive) Inserts(dir string, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	quote := "'"
	if o.nationalLiterals {
		quote = "N'"
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES(", d.Table, strings.Join(d.Columns, ","))
	var sb strings.Builder
	for _, name := range d.Files {
		if err := d.writeFileInserts(&sb, prefix, quote, filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (d Directive) writeFileInserts(sb *strings.Builder, prefix, quote, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close() // nolint: errcheck

	r := csv.NewReader(f)
	r.Comma = d.Delimiter
	header := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read CSV file %s: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		sb.WriteString(prefix)
		for i, v := range record {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(quote)
			sb.WriteString(strings.ReplaceAll(v, "'", "''"))
			sb.WriteByte('\'')
		}
		sb.WriteString(");\n")
	}
}
