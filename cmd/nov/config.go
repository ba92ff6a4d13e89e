package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values in .novelty/config.yml.

Usage:
  nov config                          # Show all config
  nov config window.mode              # Get specific value
  nov config window.mode trailing     # Set value
  nov config scoring.statistic mean   # Change the rarity statistic

Keys use dotted paths; NOV_* environment variables override them at load
time (NOV_WINDOW_SPAN=3 overrides window.span).`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  any    `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	if len(args) == 2 {
		cfg, err := config.Set(repoRoot, args[0], args[1])
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		value, _ := lookupKey(cfg, args[0])
		if humanOutput {
			fmt.Printf("Set %s = %v\n", args[0], value)
		} else {
			outputJSON(UpdateResponse{Status: "updated", Key: args[0], Value: value})
		}
		return nil
	}

	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		if humanOutput {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				exitWithError(ExitError, "encoding config: %v", err)
			}
			fmt.Print(string(data))
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	value, ok := lookupKey(cfg, args[0])
	if !ok {
		exitWithError(ExitConfigError, "unknown key: %s (valid: %s)", args[0], strings.Join(config.Keys(), ", "))
	}
	if humanOutput {
		fmt.Println(value)
	} else {
		outputJSON(map[string]any{args[0]: value})
	}
	return nil
}

// lookupKey resolves a dotted key against the YAML form of cfg.
func lookupKey(cfg *config.Config, key string) (any, bool) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, false
	}
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, false
	}
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[part]; !ok {
			return nil, false
		}
	}
	return node, true
}
