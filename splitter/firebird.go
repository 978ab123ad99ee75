/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package splitter

import (
	"regexp"
	"strings"
)

const firebirdDefaultTerminator = ";"

var setTermRegexp = regexp.MustCompile(`(?is)^SET\s+TERM\s+(\S+)`)

// SplitFirebird splits a Firebird script.
//
// String literals ('...'), quoted identifiers ("...") and comments (-- and /* */) are copied as is
// and never split. "SET TERM <new> <old>" switches the statement terminator and is not emitted itself.
// With the default ";" terminator, a statement ends only outside of BEGIN/END and CASE/END blocks,
// so EXECUTE BLOCK statements and procedure, trigger or function bodies are kept whole.
// A custom terminator always ends the statement.
func SplitFirebird(script string) []string {
	p := firebirdParser{script: script, term: firebirdDefaultTerminator}
	return p.parse()
}

type firebirdParser struct {
	script string
	term   string
	stmts  []string

	buf     strings.Builder
	hasCode bool
	head    []string // leading keywords of the current statement
	depth   int
	sawAS   bool
	opened  bool
}

func (p *firebirdParser) parse() []string {
	s := p.script
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s)
			} else {
				end += i
			}
			p.buf.WriteString(s[i:end])
			i = end

		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				end = len(s)
			} else {
				end += i + 4
			}
			p.buf.WriteString(s[i:end])
			i = end

		case c == '\'' || c == '"':
			end := closingQuote(s, i)
			p.buf.WriteString(s[i:end])
			p.hasCode = true
			i = end

		case strings.HasPrefix(s[i:], p.term) && p.canTerminate():
			p.flush()
			i += len(p.term)

		case isWordChar(c):
			if !p.hasCode {
				if next, ok := p.setTerm(i); ok {
					i = next
					continue
				}
			}
			j := i
			for j < len(s) && isWordChar(s[j]) {
				j++
			}
			p.word(s[i:j])
			i = j

		default:
			p.buf.WriteByte(c)
			if !isSpace(c) {
				p.hasCode = true
			}
			i++
		}
	}
	p.flush()
	if p.stmts == nil {
		return []string{}
	}
	return p.stmts
}

// canTerminate reports whether the current terminator ends the statement at this point.
func (p *firebirdParser) canTerminate() bool {
	if p.term != firebirdDefaultTerminator {
		return true
	}
	if p.depth > 0 {
		return false
	}
	// Declarations of a PSQL body go before its first BEGIN and end with ";".
	return !(p.isPSQL() && p.sawAS && !p.opened)
}

func (p *firebirdParser) word(w string) {
	p.buf.WriteString(w)
	p.hasCode = true
	upper := strings.ToUpper(w)
	if len(p.head) < 4 {
		p.head = append(p.head, upper)
	}
	switch upper {
	case "BEGIN":
		p.depth++
		p.opened = true
	case "CASE":
		p.depth++
	case "END":
		if p.depth > 0 {
			p.depth--
		}
	case "AS":
		if p.depth == 0 {
			p.sawAS = true
		}
	}
}

func (p *firebirdParser) isPSQL() bool {
	if len(p.head) < 2 {
		return false
	}
	switch p.head[0] {
	case "EXECUTE":
		return p.head[1] == "BLOCK"
	case "CREATE", "ALTER", "RECREATE":
		for _, w := range p.head[1:] {
			switch w {
			case "PROCEDURE", "TRIGGER", "FUNCTION", "PACKAGE":
				return true
			}
		}
	}
	return false
}

// setTerm handles "SET TERM <new> <old>" at position i and returns the position after it.
func (p *firebirdParser) setTerm(i int) (int, bool) {
	m := setTermRegexp.FindStringSubmatchIndex(p.script[i:])
	if m == nil {
		return 0, false
	}
	newTerm := p.script[i+m[2] : i+m[3]]
	next := i + m[1]
	if len(newTerm) > len(p.term) && strings.HasSuffix(newTerm, p.term) {
		newTerm = strings.TrimSuffix(newTerm, p.term)
	} else if idx := strings.Index(p.script[next:], p.term); idx >= 0 {
		next += idx + len(p.term)
	} else {
		next = len(p.script)
	}
	p.reset()
	p.term = newTerm
	return next, true
}

func (p *firebirdParser) flush() {
	if p.hasCode {
		if stmt := strings.TrimSpace(p.buf.String()); stmt != "" {
			p.stmts = append(p.stmts, stmt)
		}
	}
	p.reset()
}

func (p *firebirdParser) reset() {
	p.buf.Reset()
	p.hasCode = false
	p.head = p.head[:0]
	p.depth = 0
	p.sawAS = false
	p.opened = false
}

// closingQuote returns the index right after the literal that starts at i.
// A doubled quote character is an escaped quote.
func closingQuote(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func isWordChar(c byte) bool {
	return c == '_' || c == '$' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
