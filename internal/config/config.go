package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Провайдеры генерации
const (
	NarrativeProviderOpenAI = "openai"
	NarrativeProviderOllama = "ollama"

	ImageProviderOpenAI = "openai"
	ImageProviderSana   = "sana"
	ImageProviderNone   = "none"
)

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Генерация текста
	NarrativeProvider string        `envconfig:"NARRATIVE_PROVIDER" default:"openai"` // openai | ollama
	NarrativeMode     string        `envconfig:"NARRATIVE_MODE" default:"paged"`      // paged | flat
	AIBaseURL         string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel           string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout         time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Генерация иллюстраций
	ImageProvider      string        `envconfig:"IMAGE_PROVIDER" default:"openai"` // openai | sana | none
	ImageBaseURL       string        `envconfig:"IMAGE_BASE_URL" default:"https://api.openai.com/v1"`
	ImageModel         string        `envconfig:"IMAGE_MODEL" default:"dall-e-3"`
	ImageSize          string        `envconfig:"IMAGE_SIZE" default:"1024x1024"`
	ImageTimeout       time.Duration `envconfig:"IMAGE_TIMEOUT" default:"120s"`
	ImageSavePath      string        `envconfig:"IMAGE_SAVE_PATH" default:"./data/images"`
	ImagePublicBaseURL string        `envconfig:"IMAGE_PUBLIC_BASE_URL" default:"/images"`
	ImageBatchWidth    int           `envconfig:"IMAGE_BATCH_WIDTH" default:"2"`
	ImageRateInterval  time.Duration `envconfig:"IMAGE_RATE_INTERVAL" default:"1s"`
	FallbackBaseURL    string        `envconfig:"FALLBACK_BASE_URL" default:"/fallback"`
	// Общий бюджет на обложку и иллюстрации одной книги. По истечении оставшиеся слоты берутся из пула
	IllustrationBudget time.Duration `envconfig:"ILLUSTRATION_BUDGET" default:"240s"`
	// Секретное поле БЕЗ envconfig тега
	ImageAPIKey string

	// Статика мастера и пула запасных иллюстраций
	StaticDir string `envconfig:"STATIC_DIR" default:""`

	// Учетная запись оператора, создается при старте, если задано имя
	BootstrapUsername string `envconfig:"BOOTSTRAP_USERNAME" default:""`
	// Секретное поле БЕЗ envconfig тега
	BootstrapPassword string

	// Rate limiting. Если REDIS_ADDR пуст, используется in-memory store
	RateLimitPerMinute uint   `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`
	RedisAddr          string `envconfig:"REDIS_ADDR" default:""`
	RedisDB            int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword      string

	// События заказов. Если RABBITMQ_URL пуст, публикация отключена
	RabbitMQURL      string `envconfig:"RABBITMQ_URL" default:""`
	OrderEventsQueue string `envconfig:"ORDER_EVENTS_QUEUE" default:"storybook.order_events"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// IsProduction сообщает, запущен ли сервис в production-окружении.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// responseMargin - запас на сохранение книги и запись ответа после генерации.
const responseMargin = 30 * time.Second

// HTTPWriteTimeout - таймаут записи ответа HTTP-сервера.
// Всегда больше суммы таймаута текста и бюджета иллюстраций, чтобы клиент получил готовую книгу.
func (c *Config) HTTPWriteTimeout() time.Duration {
	return c.AITimeout + c.IllustrationBudget + responseMargin
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	switch c.NarrativeProvider {
	case NarrativeProviderOpenAI, NarrativeProviderOllama:
	default:
		return fmt.Errorf("unsupported NARRATIVE_PROVIDER %q", c.NarrativeProvider)
	}
	switch c.NarrativeMode {
	case "paged", "flat":
	default:
		return fmt.Errorf("unsupported NARRATIVE_MODE %q", c.NarrativeMode)
	}
	switch c.ImageProvider {
	case ImageProviderOpenAI, ImageProviderSana, ImageProviderNone:
	default:
		return fmt.Errorf("unsupported IMAGE_PROVIDER %q", c.ImageProvider)
	}
	if c.ImageBatchWidth < 1 {
		return fmt.Errorf("IMAGE_BATCH_WIDTH must be positive, got %d", c.ImageBatchWidth)
	}
	if c.IllustrationBudget <= 0 {
		return fmt.Errorf("ILLUSTRATION_BUDGET must be positive, got %s", c.IllustrationBudget)
	}
	if c.BootstrapUsername != "" && c.BootstrapPassword == "" {
		return fmt.Errorf("BOOTSTRAP_USERNAME is set but bootstrap_password secret is missing")
	}
	if c.RateLimitPerMinute == 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err = godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	// Загружаем НЕсекретные переменные из окружения
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Ключи провайдеров необязательны: без ключа сервис работает на заглушках
	optionalSecrets := []struct {
		name   string
		envKey string
		target *string
	}{
		{"ai_api_key", "AI_API_KEY", &cfg.AIAPIKey},
		{"image_api_key", "IMAGE_API_KEY", &cfg.ImageAPIKey},
		{"redis_password", "REDIS_PASSWORD", &cfg.RedisPassword},
		{"bootstrap_password", "BOOTSTRAP_PASSWORD", &cfg.BootstrapPassword},
	}
	for _, s := range optionalSecrets {
		value, source, err := LookupSecret(s.name, s.envKey)
		switch {
		case err == nil:
			*s.target = value
			log.Printf("Secret '%s' loaded from %s", s.name, source)
		case errors.Is(err, ErrSecretNotFound):
			log.Printf("Optional secret '%s' not found, %s is empty.", s.name, s.envKey)
		default:
			return nil, fmt.Errorf("error reading secret '%s': %w", s.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("Configuration loaded successfully.")
	return &cfg, nil
}
