package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/canon"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/corpus"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/ingest"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify corpus integrity",
	Long: `Verify the ingested corpus: count references that point outside the
loaded documents (dangling references, which are expected and harmless) and
report identifier collisions, where distinct identifiers share a canonical key.

Collisions make the command exit with status 3.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status            string                  `json:"status"`
	Ingest            ingest.Stats            `json:"ingest"`
	Validation        corpus.ValidationResult `json:"validation"`
	ResolvedFraction  float64                 `json:"resolved_fraction"`
	Identifiers       int                     `json:"identifiers"`
	ExpectedCollision float64                 `json:"expected_collisions"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	docs, conv := convertRecords(repoRoot, cfg)
	store := corpus.New(docs)
	v := store.Validate(conv.Registry())

	result := CheckResult{
		Status:            "ok",
		Ingest:            conv.Stats(),
		Validation:        v,
		ResolvedFraction:  v.ResolvedFraction(),
		Identifiers:       conv.Registry().Identifiers(),
		ExpectedCollision: expectedCollisions(conv.Registry(), cfg.IDHashBound),
	}
	if !v.OK() {
		result.Status = "collisions"
	}

	if humanOutput {
		fmt.Printf("Documents:   %d\n", v.Documents)
		fmt.Printf("References:  %d (%.1f%% resolved in corpus)\n", v.References, 100*result.ResolvedFraction)
		fmt.Printf("Dangling:    %d occurrences of %d distinct works\n", v.Dangling, v.DanglingDistinct)
		fmt.Printf("Identifiers: %d distinct, %.3g collisions expected at bound %d\n",
			result.Identifiers, result.ExpectedCollision, cfg.IDHashBound)
		for _, c := range v.IDCollisions {
			fmt.Printf("  collision on key %d: %v\n", c.Key, c.IDs)
		}
		for _, c := range v.Collisions {
			fmt.Printf("  documents sharing key %d: %v\n", c.Key, c.SourceIDs)
		}
		if v.OK() {
			fmt.Println("No collisions found")
		}
	} else {
		outputJSON(result)
	}

	if !v.OK() {
		os.Exit(ExitDataError)
	}
	return nil
}

// expectedCollisions is the birthday estimate over every distinct identifier
// seen, including those that collided onto an existing key.
func expectedCollisions(r *canon.Registry, bound uint64) float64 {
	return canon.ExpectedCollisions(r.Identifiers(), bound)
}
