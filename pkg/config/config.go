package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	Neo4j   Neo4jConfig
	Milvus  MilvusConfig
	LLM     LLMConfig
	Logging LoggingConfig
	Triage  TriageConfig
	Routing RoutingConfig
	Dataset DatasetConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	RateLimit      int
	Environment    string
	AllowedOrigins []string
}

func (c ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	StatusTTL int
}

type Neo4jConfig struct {
	Enabled  bool
	URI      string
	Username string
	Password string
	Database string
}

type MilvusConfig struct {
	Enabled        bool
	Endpoint       string
	APIKey         string
	CollectionName string
	IndexType      string
}

type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

// Enabled reports whether routing rationales can be requested.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TriageConfig struct {
	MaxPatients int
}

type RoutingConfig struct {
	Lambda             float64
	Eta                float64
	Iterations         int
	WaspasWeight       float64
	DiffusionWeight    float64
	SimilarityWeight   float64
	MaxRecommendations int
	Narrate            bool
}

type DatasetConfig struct {
	Path string
	Seed bool
}

func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the named config file, or searches the default locations when
// path is empty. Environment variables prefixed MEDITRIAGE_ override both.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/meditriage")
	}

	v.SetEnvPrefix("MEDITRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Routing.Lambda < 0 || c.Routing.Lambda > 1 {
		return fmt.Errorf("routing.lambda must be within [0, 1], got %v", c.Routing.Lambda)
	}
	if c.Routing.Iterations < 0 {
		return fmt.Errorf("routing.iterations must not be negative, got %d", c.Routing.Iterations)
	}
	if c.Routing.WaspasWeight < 0 || c.Routing.DiffusionWeight < 0 || c.Routing.SimilarityWeight < 0 {
		return fmt.Errorf("routing fusion weights must not be negative")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 1048576)
	v.SetDefault("server.rateLimit", 120)
	v.SetDefault("server.environment", "production")
	v.SetDefault("server.allowedOrigins", []string{})

	v.SetDefault("sqlite.path", "./data/meditriage.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.statusTTL", 900)

	v.SetDefault("neo4j.enabled", false)
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("milvus.enabled", false)
	v.SetDefault("milvus.endpoint", "localhost:19530")
	v.SetDefault("milvus.apiKey", "")
	v.SetDefault("milvus.collectionName", "specialist_profiles")
	v.SetDefault("milvus.indexType", "FLAT")

	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.baseURL", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.maxTokens", 400)
	v.SetDefault("llm.timeoutSec", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("triage.maxPatients", 500)

	v.SetDefault("routing.lambda", 0.5)
	v.SetDefault("routing.eta", 0.2)
	v.SetDefault("routing.iterations", 2)
	v.SetDefault("routing.waspasWeight", 0.5)
	v.SetDefault("routing.diffusionWeight", 0.3)
	v.SetDefault("routing.similarityWeight", 0.2)
	v.SetDefault("routing.maxRecommendations", 5)
	v.SetDefault("routing.narrate", true)

	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.seed", true)
}
