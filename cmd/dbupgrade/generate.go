/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/acronis/go-dbupgrade/manifest"
	"github.com/acronis/go-dbupgrade/repository"
)

const (
	sampleScriptsFolderName = "Scripts"
	sampleVersionName       = "V1.0.0"
)

const sampleVersionsContent = `<?xml version="1.0" encoding="utf-8"?>
<Versions>
  <!-- This is only a sample file.
       Versions are listed here in the order they are applied.
       Each version must have a unique entry.
  -->
  <Version>V1.0.0</Version>
</Versions>
`

const sampleDefinitionContent = `<?xml version="1.0" encoding="utf-8"?>
<Files>
  <!-- This is only a sample file.
       Each file must have a unique GUID.
       File paths are relative to the version folder.
  <File>
    <Id>{DEA469E4-0D2E-4b00-B833-3B550F0A0732}</Id>
    <Path>Tables\BackendUser.sql</Path>
  </File>
  -->
</Files>
`

func newGenerateCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [outputFolder]",
		Short: "Create a sample scripts repository",
		Long: "Create a sample scripts repository in outputFolder (the current directory by default).\n" +
			"The output folder must exist.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			outputFolder := "."
			if len(args) == 1 {
				outputFolder = args[0]
			}
			root, err := generateSample(outputFolder)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Sample scripts repository has been created in %s.\n", root)
			return nil
		},
	}
}

// generateSample creates the directory layout of a scripts repository with sample manifests
// and returns the path of its root.
func generateSample(outputFolder string) (string, error) {
	fi, err := os.Stat(outputFolder)
	if err != nil {
		return "", fmt.Errorf("output folder: %w", err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("output folder %s is not a directory", outputFolder)
	}

	root := filepath.Join(outputFolder, sampleScriptsFolderName)
	upgradesDir := filepath.Join(root, repository.UpgradesFolderName)
	versionDir := filepath.Join(upgradesDir, sampleVersionName)
	for _, dir := range []string{
		filepath.Join(root, repository.CommonFolderName, "Functions"),
		filepath.Join(root, repository.CommonFolderName, "Procedures"),
		versionDir,
	} {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create directory: %w", err)
		}
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(upgradesDir, manifest.VersionsFileName), sampleVersionsContent},
		{filepath.Join(versionDir, manifest.DefinitionFileName), sampleDefinitionContent},
	}
	for _, f := range files {
		if err = os.WriteFile(f.path, []byte(f.content), 0o644); err != nil { // nolint: gosec
			return "", fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
		}
	}
	return root, nil
}
