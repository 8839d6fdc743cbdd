// Package config loads application configuration from file and
// environment, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recon-hq/recon/internal/recommend"
)

// Config holds the full application configuration.
type Config struct {
	TMDB      TMDBConfig      `yaml:"tmdb" mapstructure:"tmdb"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Recommend RecommendConfig `yaml:"recommend" mapstructure:"recommend"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// TMDBConfig holds catalog API credentials and client tuning.
type TMDBConfig struct {
	// Key is either a v3 API key or a v4 read access token prefixed with
	// "Bearer ".
	Key          string  `yaml:"key" mapstructure:"key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Language     string  `yaml:"language" mapstructure:"language"`
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelayMs int     `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst    int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// RetryDelay returns the configured inter-attempt delay.
func (c TMDBConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// Timeout returns the configured per-call timeout.
func (c TMDBConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RecommendConfig configures the recommendation pipeline and scorer.
type RecommendConfig struct {
	MaxResults  int                   `yaml:"max_results" mapstructure:"max_results"`
	Concurrency int                   `yaml:"concurrency" mapstructure:"concurrency"`
	Score       recommend.ScoreConfig `yaml:"score" mapstructure:"score"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. tmdb.key defaults empty so the env binding registers.
	v.SetDefault("tmdb.key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.max_retries", 3)
	v.SetDefault("tmdb.retry_delay_ms", 250)
	v.SetDefault("tmdb.timeout_secs", 10)
	v.SetDefault("tmdb.rate_limit", 40)
	v.SetDefault("tmdb.rate_burst", 40)
	v.SetDefault("server.port", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("recommend.max_results", 8)
	v.SetDefault("recommend.concurrency", 4)

	score := recommend.DefaultScoreConfig()
	v.SetDefault("recommend.score.genre_weight", score.GenreWeight)
	v.SetDefault("recommend.score.overview_weight", score.OverviewWeight)
	v.SetDefault("recommend.score.popularity_weight", score.PopularityWeight)
	v.SetDefault("recommend.score.recency_weight", score.RecencyWeight)
	v.SetDefault("recommend.score.popularity_ceiling", score.PopularityCeiling)
	v.SetDefault("recommend.score.recency_horizon_years", score.RecencyHorizonYears)
	v.SetDefault("recommend.score.near_duplicate_penalty", score.NearDuplicatePenalty)
	v.SetDefault("recommend.score.near_duplicate_min_shared", score.NearDuplicateMinShared)
	v.SetDefault("recommend.score.near_duplicate_max_genres", score.NearDuplicateMaxGenres)
	v.SetDefault("recommend.score.title_overlap_penalty", score.TitleOverlapPenalty)
	v.SetDefault("recommend.score.title_overlap_min_words", score.TitleOverlapMinWords)
	v.SetDefault("recommend.score.overview_reason_threshold", score.OverviewReasonThreshold)
	v.SetDefault("recommend.score.recency_reason_threshold", score.RecencyReasonThreshold)
	v.SetDefault("recommend.score.max_reason_genres", score.MaxReasonGenres)

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

	if err := recommend.ValidateConfig(cfg.Recommend.Score); err != nil {
		return nil, err
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
