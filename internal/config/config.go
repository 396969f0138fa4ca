package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/code-review-api/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	GitHub   GitHubConfig
	AI       AIConfig
	Review   ReviewConfig
	Database DBConfig
	Logging  logger.Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port             string
	AllowedOrigin    string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	AuthRouteTimeout time.Duration
	ShutdownTimeout  time.Duration
	MaxRequestBytes  int64
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
}

// GitHubConfig holds source-control credentials.
type GitHubConfig struct {
	Token          string
	APIURL         string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// AIConfig holds inference endpoint settings.
type AIConfig struct {
	LLMProvider    string
	OllamaHost     string
	GeneratorModel string
	GeminiAPIKey   string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
}

// ReviewConfig holds pipeline settings.
type ReviewConfig struct {
	Workers    int
	MaxLines   int
	PolicyFile string
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Driver          string
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	Path            string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	return load(true)
}

// LoadCLIConfig is LoadConfig without the token signing requirements, for
// commands that never serve HTTP.
func LoadCLIConfig() (*Config, error) {
	return load(false)
}

func load(serving bool) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !envFileMissing(err) {
		slog.Warn("failed to read config file", "file", ".env", "error", err)
	}

	return fromViper(v, serving)
}

// envFileMissing reports whether err only says there is no .env file.
func envFileMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15m")
	v.SetDefault("AUTH_ROUTE_TIMEOUT", "60s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("MAX_REQUEST_BYTES", 1<<20)

	v.SetDefault("JWT_EXPIRY", "120m")
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/github-app.private-key.pem")

	v.SetDefault("LLM_PROVIDER", "ollama")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("GENERATOR_MODEL_NAME", "codellama:7b-instruct")
	v.SetDefault("LLM_TEMPERATURE", 0.2)
	v.SetDefault("LLM_MAX_TOKENS", 500)
	v.SetDefault("INFERENCE_TIMEOUT", "5m")

	v.SetDefault("REVIEW_WORKERS", 4)
	v.SetDefault("MAX_FILE_LINES", 1000)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_NAME", "code_review")
	v.SetDefault("DB_PATH", "code-review.db")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
}

func fromViper(v *viper.Viper, serving bool) (*Config, error) {
	if serving && v.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if v.GetString("GITHUB_TOKEN") == "" && v.GetInt64("GITHUB_APP_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_TOKEN or GITHUB_APP_ID must be set")
	}
	if v.GetInt64("GITHUB_APP_ID") != 0 && v.GetInt64("GITHUB_INSTALLATION_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_INSTALLATION_ID must be set when GITHUB_APP_ID is set")
	}

	provider := strings.ToLower(v.GetString("LLM_PROVIDER"))
	switch provider {
	case "ollama", "goframe":
	case "gemini":
		if v.GetString("GEMINI_API_KEY") == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set for the gemini provider")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	driver := strings.ToLower(v.GetString("DB_DRIVER"))
	switch driver {
	case "postgres", "sqlite3", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}

	if v.GetInt("REVIEW_WORKERS") <= 0 {
		return nil, fmt.Errorf("REVIEW_WORKERS must be positive, got: %d", v.GetInt("REVIEW_WORKERS"))
	}

	return &Config{
		Server: ServerConfig{
			Port:             v.GetString("SERVER_PORT"),
			AllowedOrigin:    v.GetString("CORS_ALLOWED_ORIGIN"),
			ReadTimeout:      v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:     v.GetDuration("SERVER_WRITE_TIMEOUT"),
			AuthRouteTimeout: v.GetDuration("AUTH_ROUTE_TIMEOUT"),
			ShutdownTimeout:  v.GetDuration("SHUTDOWN_TIMEOUT"),
			MaxRequestBytes:  v.GetInt64("MAX_REQUEST_BYTES"),
		},
		Auth: AuthConfig{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("JWT_EXPIRY"),
			BcryptCost:  v.GetInt("BCRYPT_COST"),
		},
		GitHub: GitHubConfig{
			Token:          v.GetString("GITHUB_TOKEN"),
			APIURL:         v.GetString("GITHUB_API_URL"),
			AppID:          v.GetInt64("GITHUB_APP_ID"),
			InstallationID: v.GetInt64("GITHUB_INSTALLATION_ID"),
			PrivateKeyPath: v.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		AI: AIConfig{
			LLMProvider:    provider,
			OllamaHost:     v.GetString("OLLAMA_HOST"),
			GeneratorModel: generatorModel(v, provider),
			GeminiAPIKey:   v.GetString("GEMINI_API_KEY"),
			Temperature:    v.GetFloat64("LLM_TEMPERATURE"),
			MaxTokens:      v.GetInt("LLM_MAX_TOKENS"),
			Timeout:        v.GetDuration("INFERENCE_TIMEOUT"),
		},
		Review: ReviewConfig{
			Workers:    v.GetInt("REVIEW_WORKERS"),
			MaxLines:   v.GetInt("MAX_FILE_LINES"),
			PolicyFile: v.GetString("REVIEW_POLICY_FILE"),
		},
		Database: DBConfig{
			Driver:          driver,
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			Username:        v.GetString("DB_USERNAME"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			Path:            v.GetString("DB_PATH"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Logging: logger.Config{
			Level:    strings.ToLower(v.GetString("LOG_LEVEL")),
			Format:   v.GetString("LOG_FORMAT"),
			Output:   v.GetString("LOG_OUTPUT"),
			FilePath: v.GetString("LOG_FILE"),
		},
	}, nil
}

// Special handling for the Gemini generator model name.
func generatorModel(v *viper.Viper, provider string) string {
	if provider != "gemini" {
		return v.GetString("GENERATOR_MODEL_NAME")
	}
	if m := v.GetString("GEMINI_GENERATOR_MODEL_NAME"); m != "" {
		return m
	}
	return "gemini-2.5-flash"
}
