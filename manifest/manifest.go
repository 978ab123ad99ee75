/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package manifest reads the XML manifests of a scripts repository:
// versions.xml (ordered list of versions) and definition.xml (ordered list of scripts of a version).
package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Manifest file names.
const (
	VersionsFileName   = "versions.xml"
	DefinitionFileName = "definition.xml"
)

// Entry is a script listed in definition.xml.
type Entry struct {
	ID uuid.UUID
	// Path is relative to the version folder and always uses "/" as a separator.
	Path string
}

type versionsXML struct {
	Versions []string `xml:"Version"`
}

type definitionXML struct {
	Files []struct {
		ID   string `xml:"Id"`
		Path string `xml:"Path"`
	} `xml:"File"`
}

// ReadVersions reads and validates versions.xml and returns version names in their declared order.
func ReadVersions(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read versions manifest: %w", err)
	}
	versions, err := ParseVersions(content)
	if err != nil {
		return nil, fmt.Errorf("parse versions manifest %s: %w", path, err)
	}
	return versions, nil
}

// ParseVersions validates content against VersionsSchema and returns version names.
// Blank names are skipped.
func ParseVersions(content []byte) ([]string, error) {
	if err := Validate(content, VersionsSchema); err != nil {
		return nil, err
	}
	var doc versionsXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal versions: %w", err)
	}
	versions := make([]string, 0, len(doc.Versions))
	for _, v := range doc.Versions {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// ReadDefinition reads and validates definition.xml and returns its entries in their declared order.
func ReadDefinition(path string) ([]Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition manifest: %w", err)
	}
	entries, err := ParseDefinition(content)
	if err != nil {
		return nil, fmt.Errorf("parse definition manifest %s: %w", path, err)
	}
	return entries, nil
}

// ParseDefinition validates content against DefinitionSchema and returns its entries.
// Files without an Id or a Path are skipped. Backslashes in paths are replaced with "/".
func ParseDefinition(content []byte) ([]Entry, error) {
	if err := Validate(content, DefinitionSchema); err != nil {
		return nil, err
	}
	var doc definitionXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	entries := make([]Entry, 0, len(doc.Files))
	for _, f := range doc.Files {
		id := strings.TrimSpace(f.ID)
		path := strings.TrimSpace(f.Path)
		if id == "" || path == "" {
			continue
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: parse id %q: %w", ErrValidation, id, err)
		}
		entries = append(entries, Entry{ID: parsed, Path: strings.ReplaceAll(path, `\`, "/")})
	}
	return entries, nil
}
