// Package config loads service configuration from the environment.
//
// A local .env file is honoured when present (development convenience);
// real deployments set the variables directly.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults for optional settings.
const (
	DefaultServerPort     = "8000"
	DefaultMongoDatabase  = "test"
	DefaultAudioColl      = "audios"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultS3Endpoint     = "s3.amazonaws.com"
	DefaultPresignExpiry  = 3600 * time.Second
	DefaultLogLevel       = "info"
	DefaultAllowedOrigins = "http://localhost:5173"
)

// Config holds every externally provided setting the service needs.
type Config struct {
	ServerPort string
	LogLevel   string

	// CORS
	AllowedOrigins []string

	// Database
	MongoDBURI      string
	MongoDBDatabase string
	AudioCollection string

	// Providers
	AssemblyAIAPIKey string
	OpenAIAPIKey     string
	OpenAIModel      string

	// Object storage / CDN
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UseSSL          bool
	CDNBaseURL        string
	PresignExpiry     time.Duration
}

// Load reads configuration from the environment. A missing .env file is not
// an error; missing required variables are.
func Load() (*Config, error) {
	// Ignore the error: .env is optional outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", DefaultServerPort)
	v.SetDefault("LOG_LEVEL", DefaultLogLevel)
	v.SetDefault("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins)
	v.SetDefault("MONGODB_DATABASE", DefaultMongoDatabase)
	v.SetDefault("AUDIO_COLLECTION", DefaultAudioColl)
	v.SetDefault("OPENAI_MODEL", DefaultOpenAIModel)
	v.SetDefault("S3_ENDPOINT", DefaultS3Endpoint)
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("PRESIGN_EXPIRY_SECONDS", int(DefaultPresignExpiry/time.Second))

	cfg := &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		AllowedOrigins:    splitOrigins(v.GetString("CORS_ALLOWED_ORIGINS")),
		MongoDBURI:        v.GetString("MONGODB_URI"),
		MongoDBDatabase:   v.GetString("MONGODB_DATABASE"),
		AudioCollection:   v.GetString("AUDIO_COLLECTION"),
		AssemblyAIAPIKey:  v.GetString("ASSEMBLY_AI_API_KEY"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("AWS_REGION"),
		S3Bucket:          v.GetString("S3_BUCKET_NAME"),
		S3AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		S3UseSSL:          v.GetBool("S3_USE_SSL"),
		CDNBaseURL:        v.GetString("CDN_BASE_URL"),
		PresignExpiry:     time.Duration(v.GetInt("PRESIGN_EXPIRY_SECONDS")) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoDBURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.AssemblyAIAPIKey == "" {
		errs = append(errs, errors.New("ASSEMBLY_AI_API_KEY is required"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.PresignExpiry <= 0 {
		errs = append(errs, errors.New("PRESIGN_EXPIRY_SECONDS must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
