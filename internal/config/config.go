package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	BraveAPIKey string `envconfig:"BRAVE_API_KEY"`
	SerpAPIKey  string `envconfig:"SERPAPI_KEY"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	ModelID        string `envconfig:"MODEL_ID" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	TargetDomain string `envconfig:"TARGET_DOMAIN" default:"example.com"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	MaxConcurrentRequests int           `envconfig:"MAX_CONCURRENT_REQUESTS" default:"3"`
	MinContentLength      int           `envconfig:"MIN_CONTENT_LENGTH" default:"100"`
	SearchTimeout         time.Duration `envconfig:"SEARCH_TIMEOUT" default:"5s"`
	FetchTimeout          time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ASKWEB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasBrave() bool {
	return c.BraveAPIKey != ""
}

func (c *Config) HasSerpAPI() bool {
	return c.SerpAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
