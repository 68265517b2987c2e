package pantrypilot

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

// MatchConfig controls pagination, generation quota and session lifetime.
type MatchConfig struct {
	BatchSize              int           `env:"BATCH_SIZE,default=3"`
	MaxGeneratedPerSession int           `env:"MAX_GENERATED_PER_SESSION,default=5"`
	GeneratorRetries       int           `env:"GENERATOR_RETRIES,default=3"`
	GeneratorTimeout       time.Duration `env:"GENERATOR_TIMEOUT,default=20s"`
	SessionTTL             time.Duration `env:"SESSION_TTL,default=30m"`
	SweepInterval          time.Duration `env:"SESSION_SWEEP_INTERVAL,default=1m"`

	// IngredientRatio bounds generated recipes to floor(pantryItems / ratio) ingredients.
	IngredientRatio float64 `env:"INGREDIENT_RATIO,default=0.75"`
}

type GeneratorConfig struct {
	Backend             string        `env:"GENERATOR_BACKEND,default=mock"`
	BaseOllamaEndpoint  string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	RatePerSecond       float64       `env:"GENERATOR_RATE_PER_SEC,default=2"`
	Burst               int           `env:"GENERATOR_BURST,default=4"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO,default=0.6"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS,default=5"`
	BreakerOpenTimeout  time.Duration `env:"BREAKER_OPEN_TIMEOUT,default=30s"`
}

type StorageConfig struct {
	Backend              string `env:"STORAGE_BACKEND,default=memory"`
	ArtifactsPantryPath  string `env:"ARTIFACTS_PANTRY_PATH,default=artifacts/pantry.json"`
	ArtifactsRecipesPath string `env:"ARTIFACTS_RECIPES_PATH,default=artifacts/recipes.json"`
	S3Bucket             string `env:"ARTIFACTS_S3_BUCKET"`
	PantryS3Key          string `env:"ARTIFACTS_PANTRY_S3_KEY"`
	RecipesS3Key         string `env:"ARTIFACTS_RECIPES_S3_KEY"`
	DatabaseURL          string `env:"DATABASE_URL"`
}

type ServerConfig struct {
	Addr            string        `env:"HTTP_ADDR,default=:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	OtelEnabled     bool          `env:"OTEL_ENABLED,default=false"`
	SlackWebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string        `env:"SLACK_CHANNEL,default=#pantrypilot-alerts"`
}

type ImageConfig struct {
	UnsplashAccessKey string  `env:"UNSPLASH_ACCESS_KEY"`
	UnsplashBaseURL   string  `env:"UNSPLASH_BASE_URL,default=https://api.unsplash.com"`
	RatePerSecond     float64 `env:"IMAGE_RATE_PER_SEC,default=5"`
}

// Config groups every section read from the environment.
type Config struct {
	Model     ModelConfig
	Match     MatchConfig
	Generator GeneratorConfig
	Storage   StorageConfig
	Server    ServerConfig
	Image     ImageConfig
}

// LoadConfig decodes each section from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	for name, section := range map[string]any{
		"model":     &cfg.Model,
		"match":     &cfg.Match,
		"generator": &cfg.Generator,
		"storage":   &cfg.Storage,
		"server":    &cfg.Server,
		"image":     &cfg.Image,
	} {
		if err := envdecode.Decode(section); err != nil {
			return Config{}, fmt.Errorf("decode %s config: %w", name, err)
		}
	}
	return cfg, nil
}
