package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/services"
)

const defaultBackends = "gemini:gemini-2.5-flash,gemini:gemini-2.5-flash-lite,gemini:gemini-2.0-flash"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Gemini   GeminiConfig
	Bedrock  BedrockConfig
	Speech   SpeechConfig
	Storage  StorageConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LLMConfig struct {
	Backends          string
	MaxOutputTokens   int32
	Temperature       float32
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

type GeminiConfig struct {
	APIKey   string
	Project  string
	Location string
}

type BedrockConfig struct {
	Region string
}

type SpeechConfig struct {
	Enabled         bool
	CredentialsFile string
	Encoding        string
	SampleRateHertz int32
	LanguageCode    string
	Model           string
}

type StorageConfig struct {
	Driver            string
	ArchiveRecordings bool
	UploadPath        string
	MaxFileSize       int64
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioUseSSL       bool
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            getEnv("ENV", "development"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "interview_coach"),
		},
		LLM: LLMConfig{
			Backends:          getEnv("LLM_BACKENDS", defaultBackends),
			MaxOutputTokens:   int32(getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 2048)),
			Temperature:       float32(getEnvAsFloat("LLM_TEMPERATURE", 0.7)),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", services.DefaultRetryAttempts),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "1s"),
		},
		Gemini: GeminiConfig{
			APIKey:   getEnv("GEMINI_API_KEY", ""),
			Project:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		},
		Bedrock: BedrockConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		Speech: SpeechConfig{
			Enabled:         getEnvAsBool("SPEECH_ENABLED", true),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			Encoding:        getEnv("SPEECH_ENCODING", "WEBM_OPUS"),
			SampleRateHertz: int32(getEnvAsInt("SPEECH_SAMPLE_RATE", 48000)),
			LanguageCode:    getEnv("SPEECH_LANGUAGE", "en-US"),
			Model:           getEnv("SPEECH_MODEL", "default"),
		},
		Storage: StorageConfig{
			Driver:            getEnv("STORAGE_DRIVER", services.StorageDriverLocal),
			ArchiveRecordings: getEnvAsBool("STORAGE_ARCHIVE_RECORDINGS", false),
			UploadPath:        getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MinioEndpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
			MinioBucket:       getEnv("MINIO_BUCKET", "interview-recordings"),
			MinioUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// ModelBackends returns the ordered fallback list with the configured generation defaults.
func (c *Config) ModelBackends() ([]services.ModelBackend, error) {
	return ParseBackends(c.LLM.Backends, c.LLM.MaxOutputTokens, c.LLM.Temperature)
}

func (c *Config) RetryPolicy() services.RetryPolicy {
	p := services.DefaultRetryPolicy()
	if c.LLM.RetryMaxAttempts > 0 {
		p.MaxAttempts = c.LLM.RetryMaxAttempts
	}
	if c.LLM.RetryInitialDelay > 0 {
		p.BaseDelay = c.LLM.RetryInitialDelay
	}
	return p
}

func (c *Config) AudioConfig() services.AudioConfig {
	return services.AudioConfig{
		Encoding:        c.Speech.Encoding,
		SampleRateHertz: c.Speech.SampleRateHertz,
		LanguageCode:    c.Speech.LanguageCode,
		Model:           c.Speech.Model,
	}
}

// ParseBackends parses "provider:model,provider:model" into an ordered backend list.
// Model names may themselves contain colons (bedrock ids such as "...-v1:0").
func ParseBackends(list string, maxOutputTokens int32, temperature float32) ([]services.ModelBackend, error) {
	var backends []services.ModelBackend
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		provider, model, ok := strings.Cut(entry, ":")
		provider = strings.ToLower(strings.TrimSpace(provider))
		model = strings.TrimSpace(model)
		if !ok || provider == "" || model == "" {
			return nil, errors.Errorf("invalid backend %q, expected provider:model", entry)
		}
		backends = append(backends, services.ModelBackend{
			Provider:        provider,
			Model:           model,
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		})
	}
	if len(backends) == 0 {
		return nil, errors.New("no model backends configured")
	}
	return backends, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
