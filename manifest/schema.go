/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package manifest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrValidation is returned when a manifest does not match its schema.
var ErrValidation = errors.New("manifest validation failed")

// Element describes an XML element allowed by a Schema.
type Element struct {
	Name     string
	Children []Element
	// Text reports whether non-whitespace character data is allowed inside the element.
	Text bool
	// Check, if set, validates the trimmed character data of the element.
	Check func(text string) error
}

func (e *Element) child(name string) *Element {
	for i := range e.Children {
		if e.Children[i].Name == name {
			return &e.Children[i]
		}
	}
	return nil
}

// Schema describes the structure of a manifest document.
// Namespaces are ignored, elements are matched by their local names.
type Schema struct {
	Root Element
}

// VersionsSchema is the schema of versions.xml.
var VersionsSchema = Schema{
	Root: Element{
		Name:     "Versions",
		Children: []Element{{Name: "Version", Text: true}},
	},
}

// DefinitionSchema is the schema of definition.xml.
var DefinitionSchema = Schema{
	Root: Element{
		Name: "Files",
		Children: []Element{{
			Name: "File",
			Children: []Element{
				{Name: "Id", Text: true, Check: checkGUID},
				{Name: "Path", Text: true},
			},
		}},
	},
}

const hexGUID = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var guidRegexp = regexp.MustCompile(`^(\{` + hexGUID + `\}|` + hexGUID + `)$`)

func checkGUID(text string) error {
	if !guidRegexp.MatchString(text) {
		return fmt.Errorf("%q is not a GUID", text)
	}
	return nil
}

type frame struct {
	el   *Element
	text strings.Builder
}

// Validate checks that content is a well-formed XML document matching the schema.
// The returned error wraps ErrValidation.
func Validate(content []byte, schema Schema) error {
	if err := validate(content, schema); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func validate(content []byte, schema Schema) error {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var stack []*frame
	rootSeen := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if len(stack) == 0 {
				if rootSeen {
					return fmt.Errorf("unexpected element <%s> after the root element", name)
				}
				if name != schema.Root.Name {
					return fmt.Errorf("root element is <%s>, expected <%s>", name, schema.Root.Name)
				}
				rootSeen = true
				stack = append(stack, &frame{el: &schema.Root})
				continue
			}
			parent := stack[len(stack)-1].el
			el := parent.child(name)
			if el == nil {
				return fmt.Errorf("unexpected element <%s> in <%s>", name, parent.Name)
			}
			stack = append(stack, &frame{el: el})
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) != 0 {
					return fmt.Errorf("unexpected text outside of the root element")
				}
				continue
			}
			top := stack[len(stack)-1]
			if !top.el.Text && len(bytes.TrimSpace(t)) != 0 {
				return fmt.Errorf("unexpected text in <%s>", top.el.Name)
			}
			top.text.Write(t)
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.el.Check != nil {
				if err := top.el.Check(strings.TrimSpace(top.text.String())); err != nil {
					return fmt.Errorf("invalid <%s>: %w", top.el.Name, err)
				}
			}
		}
	}
	if !rootSeen {
		return fmt.Errorf("no root element <%s>", schema.Root.Name)
	}
	return nil
}
