/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package repository reads a scripts repository from disk.
//
// Layout of the repository:
//
//	<root>/Upgrades/versions.xml                 optional ordered list of versions
//	<root>/Upgrades/<Version>/definition.xml     ordered list of scripts of the version
//	<root>/Upgrades/<Version>/<...>.sql
//	<root>/Common/**/*.sql                       scripts executed on every run
//
// Resolve reads and validates every manifest and every script up front,
// so a broken repository is reported before anything is executed.
package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/acronis/go-dbupgrade/manifest"
)

// Folder names inside the repository root.
const (
	UpgradesFolderName = "Upgrades"
	CommonFolderName   = "Common"
)

const scriptExt = ".sql"

// Errors returned by Resolve.
var (
	ErrMissingScriptsFolder = errors.New("scripts folder does not exist")
	ErrUnknownVersion       = errors.New("unknown version")
	ErrMissingManifest      = errors.New("missing definition manifest")
	ErrScriptNotFound       = errors.New("script not found")
)

// Script is an SQL script read from the repository.
type Script struct {
	// ID is uuid.Nil for common scripts.
	ID uuid.UUID
	// Path is relative to the repository root and uses "/" as a separator.
	Path string
	// FullPath is the location of the script on disk.
	FullPath string
	Content  string
}

// Tracked reports whether the script is recorded in the changelog.
func (s Script) Tracked() bool {
	return s.ID != uuid.Nil
}

// Version is a version folder with scripts in manifest order.
type Version struct {
	Name    string
	Scripts []Script
}

// Layout is a resolved repository.
type Layout struct {
	Root     string
	Versions []Version
	Common   []Script
}

// Resolve reads the repository rooted at root.
// If fromVersion is not empty, versions preceding it (case-insensitive name match) are skipped.
func Resolve(root, fromVersion string) (*Layout, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingScriptsFolder, root)
	}

	layout := &Layout{Root: root}

	upgradesDir := filepath.Join(root, UpgradesFolderName)
	if isDir(upgradesDir) {
		names, err := versionNames(upgradesDir)
		if err != nil {
			return nil, err
		}
		if names, err = skipToVersion(names, fromVersion); err != nil {
			return nil, err
		}
		for _, name := range names {
			v, err := readVersion(root, upgradesDir, name)
			if err != nil {
				return nil, err
			}
			layout.Versions = append(layout.Versions, v)
		}
	} else if fromVersion != "" {
		return nil, fmt.Errorf("%w: %s (no %s folder)", ErrUnknownVersion, fromVersion, UpgradesFolderName)
	}

	commonDir := filepath.Join(root, CommonFolderName)
	if isDir(commonDir) {
		if layout.Common, err = readCommon(root, commonDir); err != nil {
			return nil, err
		}
	}

	return layout, nil
}

// versionNames returns version names from versions.xml or, if it is absent, the sub-folders of dir in lexical order.
func versionNames(dir string) ([]string, error) {
	versionsFile := filepath.Join(dir, manifest.VersionsFileName)
	if _, err := os.Stat(versionsFile); err == nil {
		return manifest.ReadVersions(versionsFile)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read upgrades folder: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func skipToVersion(names []string, fromVersion string) ([]string, error) {
	if fromVersion == "" {
		return names, nil
	}
	for i, name := range names {
		if strings.EqualFold(name, fromVersion) {
			return names[i:], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, fromVersion)
}

func readVersion(root, upgradesDir, name string) (Version, error) {
	versionDir := filepath.Join(upgradesDir, name)
	definitionFile := filepath.Join(versionDir, manifest.DefinitionFileName)
	if !isFile(definitionFile) {
		return Version{}, fmt.Errorf("%w: version %s", ErrMissingManifest, name)
	}
	entries, err := manifest.ReadDefinition(definitionFile)
	if err != nil {
		return Version{}, fmt.Errorf("version %s: %w", name, err)
	}

	v := Version{Name: name, Scripts: make([]Script, 0, len(entries))}
	for _, entry := range entries {
		fullPath := filepath.Join(versionDir, filepath.FromSlash(entry.Path))
		script, err := readScript(root, fullPath)
		if err != nil {
			return Version{}, fmt.Errorf("version %s: %w", name, err)
		}
		script.ID = entry.ID
		v.Scripts = append(v.Scripts, script)
	}
	return v, nil
}

func readCommon(root, commonDir string) ([]Script, error) {
	var paths []string
	err := filepath.WalkDir(commonDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), scriptExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk common folder: %w", err)
	}

	scripts := make([]Script, 0, len(paths))
	for _, p := range paths {
		script, err := readScript(root, p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func readScript(root, fullPath string) (Script, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return Script{}, fmt.Errorf("%w: %w", ErrScriptNotFound, err)
	}
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		return Script{}, fmt.Errorf("make relative path for %s: %w", fullPath, err)
	}
	return Script{Path: filepath.ToSlash(rel), FullPath: fullPath, Content: string(content)}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
