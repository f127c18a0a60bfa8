package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Parser ParserConfig
	Batch  BatchConfig
	S3     S3Config
	CORS   CORSConfig
}

// CORSConfig holds CORS settings for the local test server.
// An empty AllowedOrigins list means every origin is allowed.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM provider.
type ParserProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	Temperature  float32 `mapstructure:"temperature"`
}

// ParserConfig holds LLM provider settings. The flat fields describe the single
// default provider; Secondary and Tertiary are optional fallbacks.
type ParserConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	Temperature  float32 `mapstructure:"temperature"`

	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config built from the flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		TimeoutSecs:  p.TimeoutSecs,
		Temperature:  p.Temperature,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// BatchConfig holds batch processor settings.
type BatchConfig struct {
	InputDir     string `mapstructure:"input_dir"`
	OutputFile   string `mapstructure:"output_file"`
	XLSXOutput   string `mapstructure:"xlsx_output"`
	UploadReport bool   `mapstructure:"upload_report"`
}

// S3Config holds AWS S3 settings used for publishing batch reports.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads configuration from environment variables with the INVOICEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOICEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults (empty = allow all)
	v.SetDefault("cors.allowed_origins", "")

	// Parser defaults
	v.SetDefault("parser.provider", "openai")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gpt-4o-mini")
	v.SetDefault("parser.timeout_secs", 120)
	v.SetDefault("parser.temperature", 0)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.timeout_secs", 120)
	v.SetDefault("parser.tertiary.provider", "")
	v.SetDefault("parser.tertiary.api_key", "")
	v.SetDefault("parser.tertiary.default_model", "")
	v.SetDefault("parser.tertiary.timeout_secs", 120)

	// Batch defaults
	v.SetDefault("batch.input_dir", "data")
	v.SetDefault("batch.output_file", "reporte_facturas.csv")
	v.SetDefault("batch.xlsx_output", "")
	v.SetDefault("batch.upload_report", false)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "reports/")

	envBindings := map[string]string{
		"server.port":                    "INVOICEX_SERVER_PORT",
		"server.environment":             "INVOICEX_SERVER_ENVIRONMENT",
		"log.level":                      "INVOICEX_LOG_LEVEL",
		"log.format":                     "INVOICEX_LOG_FORMAT",
		"cors.allowed_origins":           "INVOICEX_CORS_ALLOWED_ORIGINS",
		"parser.provider":                "INVOICEX_PARSER_PROVIDER",
		"parser.api_key":                 "INVOICEX_PARSER_API_KEY",
		"parser.default_model":           "INVOICEX_PARSER_DEFAULT_MODEL",
		"parser.timeout_secs":            "INVOICEX_PARSER_TIMEOUT_SECS",
		"parser.temperature":             "INVOICEX_PARSER_TEMPERATURE",
		"parser.secondary.provider":      "INVOICEX_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "INVOICEX_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "INVOICEX_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.timeout_secs":  "INVOICEX_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.secondary.temperature":   "INVOICEX_PARSER_SECONDARY_TEMPERATURE",
		"parser.tertiary.provider":       "INVOICEX_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":        "INVOICEX_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model":  "INVOICEX_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.timeout_secs":   "INVOICEX_PARSER_TERTIARY_TIMEOUT_SECS",
		"parser.tertiary.temperature":    "INVOICEX_PARSER_TERTIARY_TEMPERATURE",
		"batch.input_dir":                "INVOICEX_BATCH_INPUT_DIR",
		"batch.output_file":              "INVOICEX_BATCH_OUTPUT_FILE",
		"batch.xlsx_output":              "INVOICEX_BATCH_XLSX_OUTPUT",
		"batch.upload_report":            "INVOICEX_BATCH_UPLOAD_REPORT",
		"s3.region":                      "INVOICEX_S3_REGION",
		"s3.bucket":                      "INVOICEX_S3_BUCKET",
		"s3.endpoint":                    "INVOICEX_S3_ENDPOINT",
		"s3.access_key":                  "INVOICEX_S3_ACCESS_KEY",
		"s3.secret_key":                  "INVOICEX_S3_SECRET_KEY",
		"s3.prefix":                      "INVOICEX_S3_PREFIX",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if INVOICEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:        serverPort,
		Environment: v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	// The provider key is conventionally exported as OPENAI_API_KEY; honor it
	// when no explicit key is configured.
	apiKey := v.GetString("parser.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	// Fallback providers inherit the primary temperature unless set explicitly.
	temperature := float32(v.GetFloat64("parser.temperature"))
	fallbackTemperature := func(key string) float32 {
		if v.IsSet(key) {
			return float32(v.GetFloat64(key))
		}
		return temperature
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       apiKey,
		DefaultModel: v.GetString("parser.default_model"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Temperature:  temperature,
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
			Temperature:  fallbackTemperature("parser.secondary.temperature"),
		},
		Tertiary: ParserProviderConfig{
			Provider:     v.GetString("parser.tertiary.provider"),
			APIKey:       v.GetString("parser.tertiary.api_key"),
			DefaultModel: v.GetString("parser.tertiary.default_model"),
			TimeoutSecs:  v.GetInt("parser.tertiary.timeout_secs"),
			Temperature:  fallbackTemperature("parser.tertiary.temperature"),
		},
	}

	cfg.Batch = BatchConfig{
		InputDir:     v.GetString("batch.input_dir"),
		OutputFile:   v.GetString("batch.output_file"),
		XLSXOutput:   v.GetString("batch.xlsx_output"),
		UploadReport: v.GetBool("batch.upload_report"),
	}

	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}

	return cfg, nil
}
