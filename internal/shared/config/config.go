package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

const (
	EnvDev        = "dev"
	EnvProduction = "production"

	StoreLocal = "local"
	StoreS3    = "s3"
)

// ErrMissingDatabaseURL is returned when production runs without a database.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required in production")

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers set the
	// client IP. Empty trusts none.
	TrustedProxies []string
	DatabaseURL    string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	SSEKMSKeyID     string

	NLPLanguage      string
	NLPResourcesDir  string
	SummarySentences int
	MaxKeywords      int

	MaxUploadBytes   int64
	UploadRatePerSec float64
	UploadRateBurst  int

	// OpenAIAPIKey is carried for the generative helper; nothing calls out with it yet.
	OpenAIAPIKey string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", EnvDev)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		TrustedProxies:  splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", StoreLocal)),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		NLPLanguage:      getEnv("NLP_LANGUAGE", "english"),
		NLPResourcesDir:  getEnv("NLP_RESOURCES_DIR", ""),
		SummarySentences: getEnvInt("SUMMARY_SENTENCES", 5),
		MaxKeywords:      getEnvInt("MAX_KEYWORDS", 10),

		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		UploadRatePerSec: getEnvFloat("UPLOAD_RATE_PER_SEC", 1),
		UploadRateBurst:  getEnvInt("UPLOAD_RATE_BURST", 5),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
	}
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	if c.Env == EnvProduction && strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	if c.ObjectStoreType == StoreS3 && strings.TrimSpace(c.S3Bucket) == "" {
		return errors.New("S3_BUCKET is required when OBJECT_STORE=s3")
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}
	if c.SummarySentences <= 0 {
		return fmt.Errorf("SUMMARY_SENTENCES must be positive, got %d", c.SummarySentences)
	}
	if c.MaxKeywords <= 0 {
		return fmt.Errorf("MAX_KEYWORDS must be positive, got %d", c.MaxKeywords)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return val
}

func validProxy(v string) bool {
	if net.ParseIP(v) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(v)
	return err == nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return EnvProduction
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return EnvDev
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return StoreS3
	default:
		return StoreLocal
	}
}
