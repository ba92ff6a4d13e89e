// Package config handles repository configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/canon"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/ingest"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/merge"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/pipeline"
)

const (
	NoveltyDir  = ".novelty"
	ConfigFile  = "config.yml"
	RecordsFile = "records.jsonl"
	DocsDir     = "docs"
	ResultsDir  = "results"
	CacheDir    = "cache"
	DBFile      = "novelty.db"

	// EnvPrefix prefixes environment overrides, e.g. NOV_WORKERS=8 or
	// NOV_SCORING_STATISTIC=mean.
	EnvPrefix = "NOV"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents repository configuration stored in .novelty/config.yml.
type Config struct {
	IDHashBound uint64         `mapstructure:"id_hash_bound" yaml:"id_hash_bound"`
	Years       YearsConfig    `mapstructure:"years" yaml:"years"`
	Graph       GraphConfig    `mapstructure:"graph" yaml:"graph"`
	Scoring     ScoringConfig  `mapstructure:"scoring" yaml:"scoring"`
	Window      WindowConfig   `mapstructure:"window" yaml:"window"`
	FocalYears  YearsSpan      `mapstructure:"focal_years" yaml:"focal_years"`
	MergePolicy string         `mapstructure:"merge_policy" yaml:"merge_policy"`
	Workers     int            `mapstructure:"workers" yaml:"workers"`
	OpenAlex    OpenAlexConfig `mapstructure:"openalex" yaml:"openalex"`
}

// YearsConfig is the publication-year range accepted at ingestion.
type YearsConfig struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// YearsSpan is an inclusive range of focal years.
type YearsSpan struct {
	Start int `mapstructure:"start" yaml:"start"`
	End   int `mapstructure:"end" yaml:"end"`
}

type GraphConfig struct {
	Weighted  bool `mapstructure:"weighted" yaml:"weighted"`
	SelfLoops bool `mapstructure:"self_loops" yaml:"self_loops"`
}

type ScoringConfig struct {
	Density     bool   `mapstructure:"density" yaml:"density"`
	Statistic   string `mapstructure:"statistic" yaml:"statistic"`
	SkipUnknown bool   `mapstructure:"skip_unknown" yaml:"skip_unknown"`
}

type WindowConfig struct {
	Mode         string `mapstructure:"mode" yaml:"mode"`
	Start        int    `mapstructure:"start" yaml:"start"`
	End          int    `mapstructure:"end" yaml:"end"`
	Span         int    `mapstructure:"span" yaml:"span"`
	IncludeFocal bool   `mapstructure:"include_focal" yaml:"include_focal"`
}

type OpenAlexConfig struct {
	Mailto    string  `mapstructure:"mailto" yaml:"mailto"`
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second
	PerPage   int     `mapstructure:"per_page" yaml:"per_page"`
}

// NoveltyPath returns the path to the .novelty directory from a root path.
func NoveltyPath(root string) string {
	return filepath.Join(root, NoveltyDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, NoveltyDir, ConfigFile)
}

// RecordsPath returns the path to records.jsonl from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, NoveltyDir, RecordsFile)
}

// DocsPath returns the directory holding one JSONL file per publication year.
func DocsPath(root string) string {
	return filepath.Join(root, NoveltyDir, DocsDir)
}

// ResultsPath returns the directory holding one JSONL file per focal year.
func ResultsPath(root string) string {
	return filepath.Join(root, NoveltyDir, ResultsDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, NoveltyDir, CacheDir)
}

// DBPath returns the path to novelty.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, NoveltyDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a novelty repository.
func IsRepository(root string) bool {
	info, err := os.Stat(NoveltyPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a novelty repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a novelty repository (no %s directory found)", NoveltyDir)
		}
		abs = parent
	}
}

// Default returns the configuration written by init.
func Default() *Config {
	return &Config{
		IDHashBound: canon.DefaultBound,
		Years:       YearsConfig{Min: 2016, Max: 2024},
		Graph:       GraphConfig{Weighted: true, SelfLoops: true},
		Scoring: ScoringConfig{
			Density:     true,
			Statistic:   novelty.DefaultStatistic().String(),
			SkipUnknown: false,
		},
		Window: WindowConfig{
			Mode:         string(pipeline.WindowFixed),
			Start:        2016,
			End:          2024,
			Span:         5,
			IncludeFocal: true,
		},
		FocalYears:  YearsSpan{Start: 2016, End: 2024},
		MergePolicy: string(merge.DefaultPolicy),
		Workers:     4,
		OpenAlex:    OpenAlexConfig{RateLimit: 10, PerPage: 200},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("id_hash_bound", d.IDHashBound)
	v.SetDefault("years.min", d.Years.Min)
	v.SetDefault("years.max", d.Years.Max)
	v.SetDefault("graph.weighted", d.Graph.Weighted)
	v.SetDefault("graph.self_loops", d.Graph.SelfLoops)
	v.SetDefault("scoring.density", d.Scoring.Density)
	v.SetDefault("scoring.statistic", d.Scoring.Statistic)
	v.SetDefault("scoring.skip_unknown", d.Scoring.SkipUnknown)
	v.SetDefault("window.mode", d.Window.Mode)
	v.SetDefault("window.start", d.Window.Start)
	v.SetDefault("window.end", d.Window.End)
	v.SetDefault("window.span", d.Window.Span)
	v.SetDefault("window.include_focal", d.Window.IncludeFocal)
	v.SetDefault("focal_years.start", d.FocalYears.Start)
	v.SetDefault("focal_years.end", d.FocalYears.End)
	v.SetDefault("merge_policy", d.MergePolicy)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("openalex.mailto", d.OpenAlex.Mailto)
	v.SetDefault("openalex.rate_limit", d.OpenAlex.RateLimit)
	v.SetDefault("openalex.per_page", d.OpenAlex.PerPage)
}

func newViper(root string, withEnv bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(ConfigPath(root))
	v.SetConfigType("yaml")
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

// Keys lists every configuration key in dotted form, sorted.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Load reads configuration from the repository at the given root. Missing
// keys take their defaults, NOV_* environment variables override the file,
// and the result is validated.
func Load(root string) (*Config, error) {
	v, err := newViper(root, true)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Set changes one dotted key (e.g. "window.span") in the stored file and
// returns the validated result. Environment overrides are not applied, so
// they never leak into the file.
func Set(root, key, value string) (*Config, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !slices.Contains(Keys(), key) {
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}

	v, err := newViper(root, false)
	if err != nil {
		return nil, err
	}
	v.Set(key, value)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks every setting that would otherwise fail mid-run.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.IDHashBound == 0 {
		return invalid("id_hash_bound must be positive")
	}
	if c.Years.Min > c.Years.Max {
		return invalid("years.min %d is after years.max %d", c.Years.Min, c.Years.Max)
	}
	if c.FocalYears.Start > c.FocalYears.End {
		return invalid("focal_years.start %d is after focal_years.end %d", c.FocalYears.Start, c.FocalYears.End)
	}
	if !c.YearRange().Contains(c.FocalYears.Start) || !c.YearRange().Contains(c.FocalYears.End) {
		return invalid("focal years %d-%d fall outside years %d-%d",
			c.FocalYears.Start, c.FocalYears.End, c.Years.Min, c.Years.Max)
	}
	if _, err := c.NoveltyPolicy(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.WindowPolicy().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := merge.ParsePolicy(c.MergePolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got %d", c.Workers)
	}
	if c.OpenAlex.RateLimit <= 0 {
		return invalid("openalex.rate_limit must be positive")
	}
	if c.OpenAlex.PerPage < 1 || c.OpenAlex.PerPage > 200 {
		return invalid("openalex.per_page must be between 1 and 200, got %d", c.OpenAlex.PerPage)
	}
	return nil
}

// YearRange returns the ingestion year filter.
func (c *Config) YearRange() ingest.YearRange {
	return ingest.YearRange{Min: c.Years.Min, Max: c.Years.Max}
}

// GraphOptions returns the co-occurrence graph options.
func (c *Config) GraphOptions() cooc.Options {
	return cooc.Options{Weighted: c.Graph.Weighted, SelfLoops: c.Graph.SelfLoops}
}

// NoveltyPolicy returns the scoring policy.
func (c *Config) NoveltyPolicy() (novelty.Policy, error) {
	stat, err := novelty.ParseStatistic(c.Scoring.Statistic)
	if err != nil {
		return novelty.Policy{}, err
	}
	p := novelty.Policy{
		Density:     c.Scoring.Density,
		SkipUnknown: c.Scoring.SkipUnknown,
		Statistic:   stat,
	}
	return p, p.Validate()
}

// WindowPolicy returns the comparison window policy.
func (c *Config) WindowPolicy() pipeline.WindowPolicy {
	return pipeline.WindowPolicy{
		Mode:         pipeline.WindowMode(c.Window.Mode),
		Start:        c.Window.Start,
		End:          c.Window.End,
		Span:         c.Window.Span,
		IncludeFocal: c.Window.IncludeFocal,
	}
}

// Merge returns the merge policy. Validate has already rejected unknown names.
func (c *Config) Merge() merge.Policy {
	p, err := merge.ParsePolicy(c.MergePolicy)
	if err != nil {
		return merge.DefaultPolicy
	}
	return p
}

// FocalYearList expands focal_years into individual years.
func (c *Config) FocalYearList() []int {
	return pipeline.FocalYears(c.FocalYears.Start, c.FocalYears.End)
}
