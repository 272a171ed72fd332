// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server         ServerConfig        `yaml:"server"`
	Database       DatabaseConfig      `yaml:"database"`
	KnowledgeBase  KnowledgeBaseConfig `yaml:"knowledge_base"`
	Pipeline       PipelineConfig      `yaml:"pipeline"`
	Scoring        ScoringConfig       `yaml:"scoring"`
	CategoryTopics map[string]string   `yaml:"category_topics"`
	Harvest        HarvestConfig       `yaml:"harvest"`
	RateLimits     RateLimitConfig     `yaml:"rate_limits"`
	Cache          CacheConfig         `yaml:"cache"`
	Logging        LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, none
	Path   string `yaml:"path"`
}

type KnowledgeBaseConfig struct {
	Source string `yaml:"source"` // seed, file, sqlite
	Path   string `yaml:"path"`   // for file
}

// PipelineConfig controls claim selection, recency decay and sampling.
type PipelineConfig struct {
	MaxClaims         int    `yaml:"max_claims"`
	MinSentenceLength int    `yaml:"min_sentence_length"`
	ClaimIDLength     int    `yaml:"claim_id_length"`
	ReferenceYear     int    `yaml:"reference_year"`
	Workers           int    `yaml:"workers"`
	Sampler           string `yaml:"sampler"` // hash, random
	Seed              uint64 `yaml:"seed"`
}

// ScoringConfig holds the verdict fusion weights and decision thresholds.
type ScoringConfig struct {
	Weights     WeightsConfig     `yaml:"weights"`
	Thresholds  ThresholdsConfig  `yaml:"thresholds"`
	Uncertainty UncertaintyConfig `yaml:"uncertainty"`
	Intervals   IntervalsConfig   `yaml:"intervals"`
}

type WeightsConfig struct {
	Semantic    float64 `yaml:"semantic"`
	Credibility float64 `yaml:"credibility"`
	Consistency float64 `yaml:"consistency"`
}

type ThresholdsConfig struct {
	VerifiedTrue  float64 `yaml:"verified_true"`
	LikelyTrue    float64 `yaml:"likely_true"`
	LikelyFalse   float64 `yaml:"likely_false"`
	VerifiedFalse float64 `yaml:"verified_false"`
}

type UncertaintyConfig struct {
	Strict   float64 `yaml:"strict"`   // verified_* buckets
	Moderate float64 `yaml:"moderate"` // likely_* buckets
	Review   float64 `yaml:"review"`   // human review gate
}

// IntervalsConfig holds confidence interval half-widths.
type IntervalsConfig struct {
	Narrow float64 `yaml:"narrow"`
	Medium float64 `yaml:"medium"`
	Wide   float64 `yaml:"wide"`
}

type HarvestConfig struct {
	Wikipedia         SourceConfig `yaml:"wikipedia"`
	PubMed            SourceConfig `yaml:"pubmed"`
	RequestsPerSecond float64      `yaml:"requests_per_second"`
	MaxResults        int          `yaml:"max_results"`
}

// SourceConfig configures one harvest client. URL is the API endpoint.
type SourceConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Credibility float64 `yaml:"credibility"`
	URL         string  `yaml:"url"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/veracity.db",
		},
		KnowledgeBase: KnowledgeBaseConfig{
			Source: "seed",
		},
		Pipeline: DefaultPipeline(),
		Scoring:  DefaultScoring(),
		CategoryTopics: map[string]string{
			"climate":  "climate change",
			"health":   "vaccine",
			"politics": "election",
		},
		Harvest: HarvestConfig{
			Wikipedia:         SourceConfig{Enabled: true, Credibility: 0.7, URL: "https://en.wikipedia.org/w/api.php"},
			PubMed:            SourceConfig{Enabled: true, Credibility: 0.85, URL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"},
			RequestsPerSecond: 2,
			MaxResults:        5,
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPipeline returns the default pipeline settings.
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		MaxClaims:         3,
		MinSentenceLength: 20,
		ClaimIDLength:     50,
		ReferenceYear:     2025,
		Workers:           4,
		Sampler:           "hash",
	}
}

// DefaultScoring returns the hand-tuned scoring constants.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Weights: WeightsConfig{Semantic: 0.4, Credibility: 0.3, Consistency: 0.3},
		Thresholds: ThresholdsConfig{
			VerifiedTrue:  0.8,
			LikelyTrue:    0.6,
			LikelyFalse:   0.4,
			VerifiedFalse: 0.2,
		},
		Uncertainty: UncertaintyConfig{Strict: 0.3, Moderate: 0.4, Review: 0.3},
		Intervals:   IntervalsConfig{Narrow: 0.05, Medium: 0.1, Wide: 0.2},
	}
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first so its variables can be interpolated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'veracity config generate' to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# Veracity Configuration

server:
  port: 8080
  read_timeout: 15s
  write_timeout: 30s

database:
  driver: sqlite  # sqlite or none
  path: ./data/veracity.db

knowledge_base:
  source: seed    # seed, file or sqlite
  # path: ./knowledge.yaml

pipeline:
  max_claims: 3
  min_sentence_length: 20
  claim_id_length: 50
  reference_year: 2025
  workers: 4
  sampler: hash   # hash (reproducible) or random
  seed: 0

scoring:
  weights:
    semantic: 0.4
    credibility: 0.3
    consistency: 0.3
  thresholds:
    verified_true: 0.8
    likely_true: 0.6
    likely_false: 0.4
    verified_false: 0.2
  uncertainty:
    strict: 0.3
    moderate: 0.4
    review: 0.3
  intervals:
    narrow: 0.05
    medium: 0.1
    wide: 0.2

category_topics:
  climate: climate change
  health: vaccine
  politics: election

harvest:
  requests_per_second: 2
  max_results: 5
  wikipedia:
    enabled: true
    credibility: 0.7
    url: https://en.wikipedia.org/w/api.php
  pubmed:
    enabled: true
    credibility: 0.85
    url: https://eutils.ncbi.nlm.nih.gov/entrez/eutils

rate_limits:
  requests_per_minute: 60

cache:
  ttl: 10m
  cleanup_interval: 30m

logging:
  level: info  # debug, info, warn, error
  format: json # json or text
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "none" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.KnowledgeBase.Source {
	case "seed":
	case "file":
		if c.KnowledgeBase.Path == "" {
			return fmt.Errorf("knowledge_base.path is required for file source")
		}
	case "sqlite":
		if c.Database.Driver != "sqlite" {
			return fmt.Errorf("knowledge_base.source sqlite requires database.driver sqlite")
		}
	default:
		return fmt.Errorf("unsupported knowledge base source: %s", c.KnowledgeBase.Source)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}

	if c.RateLimits.RequestsPerMinute < 1 {
		return fmt.Errorf("rate_limits.requests_per_minute must be positive")
	}

	if c.Harvest.RequestsPerSecond <= 0 {
		return fmt.Errorf("harvest.requests_per_second must be positive")
	}
	if c.Harvest.MaxResults < 1 {
		return fmt.Errorf("harvest.max_results must be positive")
	}
	for name, src := range map[string]SourceConfig{"wikipedia": c.Harvest.Wikipedia, "pubmed": c.Harvest.PubMed} {
		if src.Credibility < 0 || src.Credibility > 1 {
			return fmt.Errorf("harvest.%s.credibility must be within [0,1]", name)
		}
		if src.Enabled && src.URL == "" {
			return fmt.Errorf("harvest.%s.url is required when enabled", name)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	return nil
}

// Validate checks pipeline settings.
func (p PipelineConfig) Validate() error {
	if p.MaxClaims < 1 {
		return fmt.Errorf("pipeline.max_claims must be positive")
	}
	if p.MinSentenceLength < 0 {
		return fmt.Errorf("pipeline.min_sentence_length must not be negative")
	}
	if p.ClaimIDLength < 1 {
		return fmt.Errorf("pipeline.claim_id_length must be positive")
	}
	if p.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be positive")
	}
	if p.Sampler != "hash" && p.Sampler != "random" {
		return fmt.Errorf("unsupported sampler: %s", p.Sampler)
	}
	return nil
}

// Validate checks that weights form a convex combination and thresholds are ordered.
func (s ScoringConfig) Validate() error {
	w := s.Weights
	if w.Semantic < 0 || w.Credibility < 0 || w.Consistency < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if sum := w.Semantic + w.Credibility + w.Consistency; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1, got %.4f", sum)
	}

	t := s.Thresholds
	for name, v := range map[string]float64{
		"verified_true":  t.VerifiedTrue,
		"likely_true":    t.LikelyTrue,
		"likely_false":   t.LikelyFalse,
		"verified_false": t.VerifiedFalse,
		"strict":         s.Uncertainty.Strict,
		"moderate":       s.Uncertainty.Moderate,
		"review":         s.Uncertainty.Review,
		"narrow":         s.Intervals.Narrow,
		"medium":         s.Intervals.Medium,
		"wide":           s.Intervals.Wide,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("scoring value %s must be within [0,1], got %.4f", name, v)
		}
	}
	if !(t.VerifiedFalse <= t.LikelyFalse && t.LikelyFalse <= t.LikelyTrue && t.LikelyTrue <= t.VerifiedTrue) {
		return fmt.Errorf("scoring thresholds must be ordered verified_false <= likely_false <= likely_true <= verified_true")
	}
	return nil
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
