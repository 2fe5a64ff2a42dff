package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	FAQ       FAQConfig       `yaml:"faq"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// FAQConfig controls matching thresholds and corpus persistence.
type FAQConfig struct {
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	LexicalThreshold    float64       `yaml:"lexicalThreshold"`
	DefaultTopK         int           `yaml:"defaultTopK"`
	MaxTopK             int           `yaml:"maxTopK"`
	TopRecommendations  int           `yaml:"topRecommendations"`
	WarmupTimeout       time.Duration `yaml:"warmupTimeout"`
	Corpus              CorpusConfig  `yaml:"corpus"`
	Valkey              ValkeyConfig  `yaml:"valkey"`
}

// CorpusConfig selects where the question bank lives.
type CorpusConfig struct {
	Driver      string            `yaml:"driver"`
	Path        string            `yaml:"path"`
	DSN         string            `yaml:"dsn"`
	MaxConns    int32             `yaml:"maxConns"`
	MinConns    int32             `yaml:"minConns"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
	// Watch reloads the file driver's corpus when it is edited on disk.
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watchDebounce"`
}

// ObjectStoreConfig points at an S3 compatible bucket (Cloudflare R2, MinIO).
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// ValkeyConfig contains connection information for a Valkey/Redis server.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider       string               `yaml:"provider"`
	Model          string               `yaml:"model"`
	APIKey         string               `yaml:"apiKey"`
	BaseURL        string               `yaml:"baseUrl"`
	Dimensions     int                  `yaml:"dimensions"`
	Encoding       string               `yaml:"encoding"`
	RequestTimeout time.Duration        `yaml:"requestTimeout"`
	MaxBatchTokens int                  `yaml:"maxBatchTokens"`
	Cache          EmbeddingCacheConfig `yaml:"cache"`
}

// EmbeddingCacheConfig controls the vector cache in front of the provider.
type EmbeddingCacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Valkey  ValkeyConfig  `yaml:"valkey"`
}

// AuthConfig contains JWT settings and the editor accounts.
type AuthConfig struct {
	Enabled         bool           `yaml:"enabled"`
	Secret          string         `yaml:"secret"`
	Issuer          string         `yaml:"issuer"`
	TokenTTL        time.Duration  `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration  `yaml:"refreshTokenTtl"`
	Editors         []EditorConfig `yaml:"editors"`
}

// EditorConfig is an account allowed to change the corpus.
type EditorConfig struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"passwordHash"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}

	if v := os.Getenv("FAQ_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FAQ.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("FAQ_LEXICAL_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FAQ.LexicalThreshold = parsed
		}
	}
	if v := os.Getenv("FAQ_DEFAULT_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.DefaultTopK = parsed
		}
	}
	if v := os.Getenv("FAQ_MAX_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.MaxTopK = parsed
		}
	}
	if v := os.Getenv("FAQ_RECOMMENDATIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.TopRecommendations = parsed
		}
	}
	if v := os.Getenv("FAQ_CORPUS_DRIVER"); v != "" {
		cfg.FAQ.Corpus.Driver = v
	}
	if v := os.Getenv("FAQ_CORPUS_PATH"); v != "" {
		cfg.FAQ.Corpus.Path = v
	}
	if v := os.Getenv("FAQ_CORPUS_DSN"); v != "" {
		cfg.FAQ.Corpus.DSN = v
	}
	if v := os.Getenv("FAQ_CORPUS_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Corpus.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("FAQ_CORPUS_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Corpus.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("FAQ_CORPUS_WATCH"); v != "" {
		cfg.FAQ.Corpus.Watch = parseBool(v)
	}
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		cfg.FAQ.Corpus.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY_ID"); v != "" {
		cfg.FAQ.Corpus.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_ACCESS_KEY"); v != "" {
		cfg.FAQ.Corpus.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		cfg.FAQ.Corpus.ObjectStore.Bucket = v
	}
	if v := os.Getenv("FAQ_VALKEY_ENABLED"); v != "" {
		cfg.FAQ.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_VALKEY_ADDR"); v != "" {
		cfg.FAQ.Valkey.Addr = v
	}

	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := firstEnv("EMBEDDING_API_KEY", "LLM_API_KEY", "OPENAI_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := firstEnv("EMBEDDING_BASE_URL", "LLM_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Embedding.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_CACHE_ENABLED"); v != "" {
		cfg.Embedding.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("EMBEDDING_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Embedding.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_CACHE_VALKEY_ADDR"); v != "" {
		cfg.Embedding.Cache.Valkey.Enabled = true
		cfg.Embedding.Cache.Valkey.Addr = v
	}

	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/faq/questions",
					"/api/v1/faq/rebuild",
					"/api/v1/auth/login",
					"/api/v1/auth/refresh",
				},
			},
		},
		FAQ: FAQConfig{
			SimilarityThreshold: 0.3,
			LexicalThreshold:    0.2,
			DefaultTopK:         3,
			MaxTopK:             20,
			TopRecommendations:  10,
			WarmupTimeout:       2 * time.Minute,
			Corpus: CorpusConfig{
				Driver:   "file",
				Path:          "data/faq_data.json",
				MaxConns:      4,
				MinConns:      0,
				WatchDebounce: 500 * time.Millisecond,
			},
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "faq",
			},
		},
		Embedding: EmbeddingConfig{
			Provider:       "hashing",
			Model:          "text-embedding-3-small",
			Dimensions:     256,
			Encoding:       "cl100k_base",
			RequestTimeout: 30 * time.Second,
			MaxBatchTokens: 200000,
			Cache: EmbeddingCacheConfig{
				Enabled: false,
				TTL:     24 * time.Hour,
				Valkey: ValkeyConfig{
					Prefix: "faq:vec",
				},
			},
		},
		Auth: AuthConfig{
			Enabled:         false,
			Issuer:          "semantic-faq",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}

	if c.FAQ.SimilarityThreshold < 0 || c.FAQ.SimilarityThreshold > 1 {
		return errors.New("faq.similarityThreshold must be within [0, 1]")
	}
	if c.FAQ.LexicalThreshold < 0 || c.FAQ.LexicalThreshold > 1 {
		return errors.New("faq.lexicalThreshold must be within [0, 1]")
	}
	if c.FAQ.MaxTopK <= 0 {
		return errors.New("faq.maxTopK must be positive")
	}
	if c.FAQ.DefaultTopK <= 0 || c.FAQ.DefaultTopK > c.FAQ.MaxTopK {
		return errors.New("faq.defaultTopK must be between 1 and faq.maxTopK")
	}
	if c.FAQ.TopRecommendations < 0 {
		return errors.New("faq.topRecommendations cannot be negative")
	}
	switch strings.ToLower(c.FAQ.Corpus.Driver) {
	case "", "file", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.FAQ.Corpus.DSN) == "" {
			return errors.New("faq.corpus.dsn cannot be empty for the postgres driver")
		}
	case "r2":
		if strings.TrimSpace(c.FAQ.Corpus.ObjectStore.Bucket) == "" {
			return errors.New("faq.corpus.objectStore.bucket cannot be empty for the r2 driver")
		}
	default:
		return fmt.Errorf("faq.corpus.driver %q is not supported", c.FAQ.Corpus.Driver)
	}
	if c.FAQ.Valkey.Enabled && strings.TrimSpace(c.FAQ.Valkey.Addr) == "" {
		return errors.New("faq.valkey.addr cannot be empty when valkey is enabled")
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case "hashing", "none", "":
	case "openai":
		if strings.TrimSpace(c.Embedding.Model) == "" {
			return errors.New("embedding.model cannot be empty for the openai provider")
		}
	default:
		return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return errors.New("embedding.dimensions cannot be negative")
	}
	if c.Embedding.Cache.TTL < 0 {
		return errors.New("embedding.cache.ttl cannot be negative")
	}
	if c.Embedding.Cache.Valkey.Enabled && strings.TrimSpace(c.Embedding.Cache.Valkey.Addr) == "" {
		return errors.New("embedding.cache.valkey.addr cannot be empty when valkey is enabled")
	}

	if c.Auth.Enabled {
		if strings.TrimSpace(c.Auth.Secret) == "" {
			return errors.New("auth.secret cannot be empty when auth is enabled")
		}
		if c.Auth.TokenTTL <= 0 {
			return errors.New("auth.tokenTtl must be positive")
		}
		if c.Auth.RefreshTokenTTL <= 0 {
			return errors.New("auth.refreshTokenTtl must be positive")
		}
	}
	return nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
