// Package main provides the nov CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/corpus"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose enables debug logging on stderr
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nov",
	Short: "Citation-based novelty scores for scientific documents",
	Long: `nov scores scientific documents by how unusual the combinations of
works they cite are, relative to the citation pairs seen in a comparison window.

Records are stored in git-versionable JSONL under .novelty/ with an ephemeral
SQLite database for queries. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.Version = Version
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// getStartingDirectory returns the directory to start searching for a repository.
// NOV_ROOT takes precedence over the working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv("NOV_ROOT"); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'nov init' to create one.", err)
	}
	return repoRoot
}

// mustLoadConfig loads and validates the repository configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadStore reads every ingested document into a store, exits on error.
func mustLoadStore(repoRoot string) *corpus.Store {
	docs, err := storage.ReadAllDocs(config.DocsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading documents: %v", err)
	}
	if len(docs) == 0 {
		exitWithError(ExitDataError, "no documents ingested\n\nRun 'nov fetch' and 'nov ingest' first.")
	}
	return corpus.New(docs)
}
