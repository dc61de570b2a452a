// Package engineconfig is the ambient, non-CLI configuration layer for the
// engine: chunking sizes, rank factor weights, cache policy, and the
// default embedding provider id. Grounded on the teacher's
// internal/config/config.go (a plain struct tree with yaml+mapstructure
// tags and a Default() constructor) and loader.go (viper with env var
// override, CORTEX_-prefixed, "." replaced with "_"), adapted from the
// CLI-facing indexing config to an engine-embedding config with no CLI
// surface of its own.
package engineconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete engine configuration tree.
type Config struct {
	Chunking     ChunkingConfig     `yaml:"chunking" mapstructure:"chunking"`
	RankWeights  RankWeightsConfig  `yaml:"rank_weights" mapstructure:"rank_weights"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	LocalContext LocalContextConfig `yaml:"local_context" mapstructure:"local_context"`
}

// ChunkingConfig mirrors the teacher's ChunkingConfig shape, generalized to
// the three strategies in internal/chunk.
type ChunkingConfig struct {
	DefaultStrategy string `yaml:"default_strategy" mapstructure:"default_strategy"`
	MaxChunkSize    int    `yaml:"max_chunk_size" mapstructure:"max_chunk_size"`
	MinChunkSize    int    `yaml:"min_chunk_size" mapstructure:"min_chunk_size"`
	Overlap         int    `yaml:"overlap" mapstructure:"overlap"`
}

// RankWeightsConfig assigns a weight in [0,1] to each built-in rank factor.
type RankWeightsConfig struct {
	TfIdfScore     float64 `yaml:"tf_idf_score" mapstructure:"tf_idf_score"`
	FuzzyScore     float64 `yaml:"fuzzy_score" mapstructure:"fuzzy_score"`
	ProximityScore float64 `yaml:"proximity_score" mapstructure:"proximity_score"`
	SemanticScore  float64 `yaml:"semantic_score" mapstructure:"semantic_score"`
	AstRelevance   float64 `yaml:"ast_relevance" mapstructure:"ast_relevance"`
	Normalization  string  `yaml:"normalization" mapstructure:"normalization"`
	MinScore       float64 `yaml:"min_score" mapstructure:"min_score"`
}

// CacheConfig configures the cache layer's eviction policy.
type CacheConfig struct {
	MaxAge   time.Duration `yaml:"max_age" mapstructure:"max_age"`
	MaxItems int           `yaml:"max_items" mapstructure:"max_items"`
}

// EmbeddingConfig names the default provider id the orchestrator registers
// at startup.
type EmbeddingConfig struct {
	DefaultProviderID string `yaml:"default_provider_id" mapstructure:"default_provider_id"`
	Dimensions        int    `yaml:"dimensions" mapstructure:"dimensions"`
}

// LocalContextConfig configures the gatherer's window sizes.
type LocalContextConfig struct {
	LinesAbove int `yaml:"lines_above" mapstructure:"lines_above"`
	LinesBelow int `yaml:"lines_below" mapstructure:"lines_below"`
}

// Default returns the engine's built-in configuration.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			DefaultStrategy: "fixed_size",
			MaxChunkSize:    2000,
			MinChunkSize:    50,
			Overlap:         100,
		},
		RankWeights: RankWeightsConfig{
			TfIdfScore:     0.3,
			FuzzyScore:     0.2,
			ProximityScore: 0.15,
			SemanticScore:  0.25,
			AstRelevance:   0.1,
			Normalization:  "minMax",
			MinScore:       0,
		},
		Cache: CacheConfig{
			MaxAge:   time.Hour,
			MaxItems: 10000,
		},
		Embedding: EmbeddingConfig{
			DefaultProviderID: "mock",
			Dimensions:        384,
		},
		LocalContext: LocalContextConfig{
			LinesAbove: 5,
			LinesBelow: 5,
		},
	}
}

// Loader loads engine configuration from file and environment variables.
// Priority (highest to lowest): environment variables (ENGINE_*) → config
// file (.cortexctx/config.yml) → built-in defaults.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a Loader rooted at rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.rootDir + "/.cortexctx")

	v.SetEnvPrefix("ENGINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"chunking.default_strategy", "chunking.max_chunk_size", "chunking.min_chunk_size", "chunking.overlap",
		"rank_weights.tf_idf_score", "rank_weights.fuzzy_score", "rank_weights.proximity_score",
		"rank_weights.semantic_score", "rank_weights.ast_relevance", "rank_weights.normalization", "rank_weights.min_score",
		"cache.max_age", "cache.max_items",
		"embedding.default_provider_id", "embedding.dimensions",
		"local_context.lines_above", "local_context.lines_below",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("engineconfig: bind env %q: %w", key, err)
		}
	}

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("engineconfig: read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: unmarshal: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("chunking.default_strategy", d.Chunking.DefaultStrategy)
	v.SetDefault("chunking.max_chunk_size", d.Chunking.MaxChunkSize)
	v.SetDefault("chunking.min_chunk_size", d.Chunking.MinChunkSize)
	v.SetDefault("chunking.overlap", d.Chunking.Overlap)

	v.SetDefault("rank_weights.tf_idf_score", d.RankWeights.TfIdfScore)
	v.SetDefault("rank_weights.fuzzy_score", d.RankWeights.FuzzyScore)
	v.SetDefault("rank_weights.proximity_score", d.RankWeights.ProximityScore)
	v.SetDefault("rank_weights.semantic_score", d.RankWeights.SemanticScore)
	v.SetDefault("rank_weights.ast_relevance", d.RankWeights.AstRelevance)
	v.SetDefault("rank_weights.normalization", d.RankWeights.Normalization)
	v.SetDefault("rank_weights.min_score", d.RankWeights.MinScore)

	v.SetDefault("cache.max_age", d.Cache.MaxAge)
	v.SetDefault("cache.max_items", d.Cache.MaxItems)

	v.SetDefault("embedding.default_provider_id", d.Embedding.DefaultProviderID)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("local_context.lines_above", d.LocalContext.LinesAbove)
	v.SetDefault("local_context.lines_below", d.LocalContext.LinesBelow)
}
