package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new novelty repository",
	Long: `Initialize a new novelty repository in the current directory.

Creates:
  .novelty/
  ├── config.yml      # Default config
  ├── records.jsonl   # Empty file, raw retrieved records
  ├── docs/           # One JSONL file per publication year
  ├── results/        # One JSONL file per focal year
  └── cache/          # SQLite query database (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a novelty repository")
	}

	for _, dir := range []string{
		config.NoveltyPath(root),
		config.DocsPath(root),
		config.ResultsPath(root),
		config.CachePath(root),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(ExitError, "creating %s: %v", dir, err)
		}
	}

	recordsFile, err := os.Create(config.RecordsPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.RecordsFile, err)
	}
	recordsFile.Close()

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized novelty repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
