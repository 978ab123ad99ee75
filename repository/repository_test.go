/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-dbupgrade/manifest"
)

const (
	id1 = "11111111-1111-1111-1111-111111111111"
	id2 = "22222222-2222-2222-2222-222222222222"
	id3 = "33333333-3333-3333-3333-333333333333"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func definition(files ...[2]string) string {
	s := "<Files>"
	for _, f := range files {
		s += "<File><Id>{" + f[0] + "}</Id><Path>" + f[1] + "</Path></File>"
	}
	return s + "</Files>"
}

// newRepo creates a repository with three versions, each holding one script, and two common scripts.
func newRepo(t *testing.T, withVersionsFile bool) string {
	t.Helper()
	root := t.TempDir()
	upgrades := filepath.Join(root, UpgradesFolderName)
	if withVersionsFile {
		writeFile(t, filepath.Join(upgrades, manifest.VersionsFileName),
			"<Versions><Version>V3</Version><Version>V1</Version><Version>V2</Version></Versions>")
	}
	for _, v := range []struct{ name, id string }{{"V1", id1}, {"V2", id2}, {"V3", id3}} {
		writeFile(t, filepath.Join(upgrades, v.name, manifest.DefinitionFileName),
			definition([2]string{v.id, `Tables\` + v.name + ".sql"}))
		writeFile(t, filepath.Join(upgrades, v.name, "Tables", v.name+".sql"), "create table "+v.name+" (id int);")
	}
	writeFile(t, filepath.Join(root, CommonFolderName, "Procedures", "p1.SQL"), "create or replace p1;")
	writeFile(t, filepath.Join(root, CommonFolderName, "Functions", "f1.sql"), "create or replace f1;")
	writeFile(t, filepath.Join(root, CommonFolderName, "Functions", "readme.txt"), "not a script")
	return root
}

func versionNamesOf(l *Layout) []string {
	var names []string
	for _, v := range l.Versions {
		names = append(names, v.Name)
	}
	return names
}

func TestResolve_EnumerationOrder(t *testing.T) {
	root := newRepo(t, false)

	layout, err := Resolve(root, "")
	require.NoError(t, err)
	require.Equal(t, []string{"V1", "V2", "V3"}, versionNamesOf(layout))

	script := layout.Versions[0].Scripts[0]
	assert.Equal(t, uuid.MustParse(id1), script.ID)
	assert.True(t, script.Tracked())
	assert.Equal(t, "Upgrades/V1/Tables/V1.sql", script.Path)
	assert.Equal(t, filepath.Join(root, "Upgrades", "V1", "Tables", "V1.sql"), script.FullPath)
	assert.Equal(t, "create table V1 (id int);", script.Content)

	require.Len(t, layout.Common, 2)
	assert.Equal(t, "Common/Functions/f1.sql", layout.Common[0].Path)
	assert.Equal(t, "Common/Procedures/p1.SQL", layout.Common[1].Path)
	assert.False(t, layout.Common[0].Tracked())
}

func TestResolve_ManifestOrder(t *testing.T) {
	root := newRepo(t, true)

	layout, err := Resolve(root, "")
	require.NoError(t, err)
	require.Equal(t, []string{"V3", "V1", "V2"}, versionNamesOf(layout))

	layout, err = Resolve(root, "v1")
	require.NoError(t, err)
	require.Equal(t, []string{"V1", "V2"}, versionNamesOf(layout))
}

func TestResolve_FromVersion(t *testing.T) {
	root := newRepo(t, false)

	layout, err := Resolve(root, "V2")
	require.NoError(t, err)
	require.Equal(t, []string{"V2", "V3"}, versionNamesOf(layout))

	_, err = Resolve(root, "V9")
	require.ErrorIs(t, err, ErrUnknownVersion)
}

func TestResolve_MissingRoot(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"), "")
	require.ErrorIs(t, err, ErrMissingScriptsFolder)

	file := filepath.Join(t.TempDir(), "file.sql")
	writeFile(t, file, "select 1;")
	_, err = Resolve(file, "")
	require.ErrorIs(t, err, ErrMissingScriptsFolder)
}

func TestResolve_OnlyCommon(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, CommonFolderName, "a.sql"), "select 1;")

	layout, err := Resolve(root, "")
	require.NoError(t, err)
	require.Empty(t, layout.Versions)
	require.Len(t, layout.Common, 1)

	_, err = Resolve(root, "V1")
	require.ErrorIs(t, err, ErrUnknownVersion)
}

func TestResolve_MissingManifest(t *testing.T) {
	root := newRepo(t, false)
	require.NoError(t, os.Remove(filepath.Join(root, UpgradesFolderName, "V2", manifest.DefinitionFileName)))

	_, err := Resolve(root, "")
	require.ErrorIs(t, err, ErrMissingManifest)

	// Versions before the skipped ones are not checked.
	layout, err := Resolve(root, "V3")
	require.NoError(t, err)
	require.Equal(t, []string{"V3"}, versionNamesOf(layout))
}

func TestResolve_VersionListedWithoutFolder(t *testing.T) {
	root := newRepo(t, true)
	writeFile(t, filepath.Join(root, UpgradesFolderName, manifest.VersionsFileName),
		"<Versions><Version>V1</Version><Version>V4</Version></Versions>")

	_, err := Resolve(root, "")
	require.ErrorIs(t, err, ErrMissingManifest)
}

func TestResolve_InvalidManifests(t *testing.T) {
	root := newRepo(t, false)
	writeFile(t, filepath.Join(root, UpgradesFolderName, "V1", manifest.DefinitionFileName),
		"<Files><File><Id>oops</Id><Path>a.sql</Path></File></Files>")
	_, err := Resolve(root, "")
	require.ErrorIs(t, err, manifest.ErrValidation)

	root = newRepo(t, false)
	writeFile(t, filepath.Join(root, UpgradesFolderName, manifest.VersionsFileName), "<Version>V1</Version>")
	_, err = Resolve(root, "")
	require.ErrorIs(t, err, manifest.ErrValidation)
}

func TestResolve_ScriptNotFound(t *testing.T) {
	root := newRepo(t, false)
	require.NoError(t, os.Remove(filepath.Join(root, UpgradesFolderName, "V3", "Tables", "V3.sql")))

	_, err := Resolve(root, "")
	require.ErrorIs(t, err, ErrScriptNotFound)
}
