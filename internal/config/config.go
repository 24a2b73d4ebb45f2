package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Security headers.
	GameOrigin         string
	CORSAllowedOrigins []string

	// Asteroid catalog configuration.
	NASAAPIKey      string
	NASABaseURL     string
	NASATimeout     time.Duration
	NEOPageSize     int
	AsteroidsFile   string
	CatalogCacheTTL time.Duration

	// LLM configuration (any OpenAI-compatible endpoint, Groq by default).
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	LLMTimeout   time.Duration
	LLMMaxTokens int

	// Assessment publishing. Disabled when KafkaBrokers is empty.
	KafkaBrokers       []string
	KafkaImpactTopic   string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Tracing configuration.
	TracingEnabled  bool
	TracingExporter string
	OTLPEndpoint    string
}

// NASAEnabled reports whether the NeoWs catalog is used ahead of the local file.
func (c *Config) NASAEnabled() bool { return c.NASAAPIKey != "" }

// LLMEnabled reports whether assistant requests go to the LLM backend.
func (c *Config) LLMEnabled() bool { return c.GroqAPIKey != "" }

// PublishEnabled reports whether assessments are relayed to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	nasaTimeout, err := parsePositiveDuration("NASA_TIMEOUT", "6s")
	if err != nil {
		return nil, err
	}

	llmTimeout, err := parsePositiveDuration("LLM_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("CATALOG_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	pageSize, err := parseBoundedInt("NEO_PAGE_SIZE", 20, 1, 100)
	if err != nil {
		return nil, err
	}

	maxTokens, err := parseBoundedInt("LLM_MAX_TOKENS", 200, 1, 8192)
	if err != nil {
		return nil, err
	}

	httpAddr := sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" {
		httpAddr = ":" + port
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HTTPAddr:        httpAddr,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GameOrigin:         sharedcfg.EnvOrDefault("GAME_ORIGIN", "https://sameersj008.github.io"),
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		NASAAPIKey:      os.Getenv("NASA_API_KEY"),
		NASABaseURL:     strings.TrimRight(sharedcfg.EnvOrDefault("NASA_BASE_URL", "https://api.nasa.gov/neo/rest/v1"), "/"),
		NASATimeout:     nasaTimeout,
		NEOPageSize:     pageSize,
		AsteroidsFile:   sharedcfg.EnvOrDefault("ASTEROIDS_FILE", "data/asteroids.json"),
		CatalogCacheTTL: cacheTTL,

		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:  strings.TrimRight(sharedcfg.EnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
		GroqModel:    sharedcfg.EnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		LLMTimeout:   llmTimeout,
		LLMMaxTokens: maxTokens,

		KafkaBrokers:       brokers,
		KafkaImpactTopic:   sharedcfg.EnvOrDefault("KAFKA_IMPACT_TOPIC", "impact-assessments"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		TracingEnabled:  os.Getenv("TRACING_ENABLED") == "true",
		TracingExporter: sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout"),
		OTLPEndpoint:    os.Getenv("OTLP_ENDPOINT"),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	if cfg.PublishEnabled() && cfg.KafkaImpactTopic == "" {
		return nil, errors.New("KAFKA_IMPACT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.TracingExporter != "stdout" && cfg.TracingExporter != "otlp" {
		return nil, errors.New("TRACING_EXPORTER must be stdout or otlp")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseBoundedInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, errors.New("invalid " + key + ": must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi))
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
