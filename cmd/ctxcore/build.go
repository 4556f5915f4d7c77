package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/contextenginehq/context-core/core/cache"
	"github.com/contextenginehq/context-core/core/document"
	"github.com/contextenginehq/context-core/core/projectconfig"
	schemacache "github.com/contextenginehq/context-core/core/schema/v1/cache"
)

type buildOutput struct {
	OK           bool   `json:"ok"`
	Path         string `json:"path,omitempty"`
	CacheVersion string `json:"cache_version,omitempty"`
	Documents    int    `json:"documents"`
	Error        string `json:"error,omitempty"`
}

func runBuild(arguments []string) int {
	flagSet := flag.NewFlagSet("build", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var root string
	var outputDir string
	var configPath string
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&root, "root", "", "ingestion root directory")
	flagSet.StringVar(&outputDir, "out", "", "cache output directory (must not exist)")
	flagSet.StringVar(&configPath, "config", projectconfig.DefaultPath, "project config path")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeError(jsonOutput, err, exitInvalidInput)
	}
	if helpFlag {
		printUsage()
		return exitOK
	}

	configuration, err := projectconfig.Load(configPath, configPath == projectconfig.DefaultPath)
	if err != nil {
		return writeError(jsonOutput, err, exitInvalidInput)
	}
	if root == "" {
		root = configuration.Build.Root
	}
	if root == "" {
		root = "."
	}
	if outputDir == "" {
		outputDir = configuration.Build.Out
	}
	if strings.TrimSpace(outputDir) == "" {
		return writeError(jsonOutput, fmt.Errorf("--out is required"), exitInvalidInput)
	}

	documents, err := ingestTree(root)
	if err != nil {
		return writeError(jsonOutput, err, exitInvalidInput)
	}

	built, err := cache.NewBuilder(schemacache.BuildConfigV0()).Build(documents, outputDir)
	if err != nil {
		return writeError(jsonOutput, err, exitInternalFailure)
	}

	output := buildOutput{
		OK:           true,
		Path:         outputDir,
		CacheVersion: built.Manifest.CacheVersion,
		Documents:    len(built.Manifest.Documents),
	}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("built cache %s\n", output.Path)
	fmt.Printf("cache_version: %s\n", output.CacheVersion)
	fmt.Printf("documents: %d\n", output.Documents)
	return exitOK
}

// ingestTree walks the root and ingests every regular file. Hidden entries
// are skipped; everything else must be valid UTF-8 or the build fails.
func ingestTree(root string) ([]document.Document, error) {
	var documents []document.Document
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(entry.Name(), ".") && path != root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the user-chosen root.
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id, err := document.IDFromPath(root, path)
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		doc, err := document.Ingest(id, filepath.ToSlash(relative), content, nil)
		if err != nil {
			return err
		}
		documents = append(documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}
