package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("ASSEMBLY_AI_API_KEY", "aai-key")
	t.Setenv("OPENAI_API_KEY", "oai-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, DefaultServerPort)
	}
	if cfg.MongoDBDatabase != DefaultMongoDatabase {
		t.Errorf("MongoDBDatabase = %q, want %q", cfg.MongoDBDatabase, DefaultMongoDatabase)
	}
	if cfg.AudioCollection != DefaultAudioColl {
		t.Errorf("AudioCollection = %q, want %q", cfg.AudioCollection, DefaultAudioColl)
	}
	if cfg.OpenAIModel != DefaultOpenAIModel {
		t.Errorf("OpenAIModel = %q, want %q", cfg.OpenAIModel, DefaultOpenAIModel)
	}
	if cfg.PresignExpiry != DefaultPresignExpiry {
		t.Errorf("PresignExpiry = %v, want %v", cfg.PresignExpiry, DefaultPresignExpiry)
	}
	if !cfg.S3UseSSL {
		t.Error("S3UseSSL default should be true")
	}
	if want := []string{DefaultAllowedOrigins}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("PRESIGN_EXPIRY_SECONDS", "600")
	t.Setenv("CDN_BASE_URL", "https://cdn.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if want := []string{"https://app.example.com", "https://staging.example.com"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.PresignExpiry != 600*time.Second {
		t.Errorf("PresignExpiry = %v, want 10m", cfg.PresignExpiry)
	}
	if cfg.CDNBaseURL != "https://cdn.example.com" {
		t.Errorf("CDNBaseURL = %q", cfg.CDNBaseURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("ASSEMBLY_AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "oai-key")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required settings")
	}
	for _, want := range []string{"MONGODB_URI", "ASSEMBLY_AI_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate_RejectsNonPositiveExpiry(t *testing.T) {
	cfg := &Config{
		MongoDBURI:       "mongodb://localhost:27017",
		AssemblyAIAPIKey: "k",
		OpenAIAPIKey:     "k",
		PresignExpiry:    0,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero presign expiry")
	}
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := splitOrigins(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitOrigins(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
