// Package config loads application configuration from config.yaml and the
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger" mapstructure:"ledger"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Enrich   EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Dedupe   DedupeConfig   `yaml:"dedupe" mapstructure:"dedupe"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// LedgerConfig configures the ledger backend.
type LedgerConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SearchConfig holds the web search/fetch API settings.
type SearchConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// EnrichConfig holds the firmographic enrichment API settings.
type EnrichConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ScoringConfig selects scoring policy variants.
type ScoringConfig struct {
	HealthcareRelaxed bool     `yaml:"healthcare_relaxed" mapstructure:"healthcare_relaxed"`
	AggregatorDomains []string `yaml:"aggregator_domains" mapstructure:"aggregator_domains"`
}

// DedupeConfig configures duplicate detection.
type DedupeConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// PipelineConfig configures a discovery run.
type PipelineConfig struct {
	TargetCount      int                 `yaml:"target_count" mapstructure:"target_count"`
	MaxSeeds         int                 `yaml:"max_seeds" mapstructure:"max_seeds"`
	MaxSearches      int                 `yaml:"max_searches" mapstructure:"max_searches"`
	MaxFetches       int                 `yaml:"max_fetches" mapstructure:"max_fetches"`
	MaxEnrich        int                 `yaml:"max_enrich" mapstructure:"max_enrich"`
	FetchConcurrency int                 `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	Queries          map[string][]string `yaml:"queries" mapstructure:"queries"`
}

// OutputConfig configures run artifacts.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	SchemaDir string `yaml:"schema_dir" mapstructure:"schema_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ICP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ledger.driver", "sqlite")
	v.SetDefault("ledger.path", "ledger.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("search.base_url", "https://api.search.example.com")
	v.SetDefault("search.requests_per_second", 2.0)
	v.SetDefault("enrich.enabled", true)
	v.SetDefault("enrich.base_url", "https://api.explorium.ai/v2")
	v.SetDefault("enrich.requests_per_second", 2.0)
	v.SetDefault("dedupe.similarity_threshold", 0.85)
	v.SetDefault("pipeline.target_count", 50)
	v.SetDefault("pipeline.max_seeds", 50)
	v.SetDefault("pipeline.max_searches", 25)
	v.SetDefault("pipeline.max_fetches", 200)
	v.SetDefault("pipeline.max_enrich", 100)
	v.SetDefault("pipeline.fetch_concurrency", 4)
	v.SetDefault("pipeline.queries", map[string][]string{
		"healthcare": {
			"Epic go-live training hospital 2024..2026",
			"healthcare EHR training virtual learning",
			"hospital Epic Cerner implementation training",
			"healthcare staff training program virtual",
			"medical center EHR go-live training",
		},
		"corporate": {
			"corporate academy training program",
			"corporate university employee development",
			"corporate learning center virtual classroom",
			"company academy employee training",
			"named corporate academy VILT",
		},
		"providers": {
			"B2B training provider virtual instructor-led",
			"corporate training company public schedule",
			"enterprise training provider live online courses",
			"professional training firm virtual classroom calendar",
		},
	})
	v.SetDefault("output.dir", "runs")
	v.SetDefault("output.schema_dir", "docs/schemas")
	v.SetDefault("scoring.healthcare_relaxed", false)
	v.SetDefault("scoring.aggregator_domains", []string{
		"linkedin.com", "glassdoor.com", "indeed.com", "wikipedia.org",
		"forbes.com", "businesswire.com", "prnewswire.com", "reuters.com",
		"youtube.com", "facebook.com", "medium.com",
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
