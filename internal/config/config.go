package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// Config holds all application configuration
type Config struct {
	App        App           `mapstructure:"app"`
	Logging    Logging       `mapstructure:"logging"`
	Content    ContentConfig `mapstructure:"content" validate:"required"`
	Sources    Sources       `mapstructure:"sources"`
	Summarizer Summarizer    `mapstructure:"summarizer"`
	Database   Database      `mapstructure:"database"`
	Server     Server        `mapstructure:"server"`
	Output     Output        `mapstructure:"output"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text console"`
}

// ContentConfig governs article selection, digest shape and quality thresholds.
type ContentConfig struct {
	MaxArticlesPerDigest    int                 `mapstructure:"max_articles_per_digest" validate:"min=1,gtefield=MinArticlesPerDigest"`
	MinArticlesPerDigest    int                 `mapstructure:"min_articles_per_digest" validate:"min=1"`
	TargetReadingTime       int                 `mapstructure:"target_reading_time" validate:"min=1"`
	MinRelevanceScore       float64             `mapstructure:"min_relevance_score" validate:"min=0,max=100"`
	MinQualityScore         float64             `mapstructure:"min_quality_score" validate:"min=0,max=100"`
	MinSubfieldVariety      int                 `mapstructure:"min_subfield_variety" validate:"min=0"`
	ExcludeOlderThanDays    int                 `mapstructure:"exclude_older_than_days" validate:"min=1"`
	IncludePreprints        bool                `mapstructure:"include_preprints"`
	MaxCandidates           int                 `mapstructure:"max_candidates" validate:"min=1"`
	AudienceLevel           core.AudienceLevel  `mapstructure:"audience_level" validate:"oneof=beginner intermediate advanced"`
	IncludeTechnicalDetails bool                `mapstructure:"include_technical_details"`
	EmphasizeApplications   bool                `mapstructure:"emphasize_applications"`
	EditorialStyle          core.EditorialStyle `mapstructure:"editorial_style" validate:"oneof=academic conversational professional"`
}

// DefaultContentConfig mirrors the documented defaults.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		MaxArticlesPerDigest:    5,
		MinArticlesPerDigest:    3,
		TargetReadingTime:       15,
		MinRelevanceScore:       60,
		MinQualityScore:         60,
		MinSubfieldVariety:      2,
		ExcludeOlderThanDays:    14,
		IncludePreprints:        true,
		MaxCandidates:           50,
		AudienceLevel:           core.AudienceIntermediate,
		IncludeTechnicalDetails: true,
		EmphasizeApplications:   true,
		EditorialStyle:          core.StyleProfessional,
	}
}

// Feed is an RSS/Atom source bound to a field.
type Feed struct {
	Name  string `mapstructure:"name" validate:"required"`
	URL   string `mapstructure:"url" validate:"required,url"`
	Field string `mapstructure:"field" validate:"required"`
}

// Sources holds ingestion configuration
type Sources struct {
	MaxResultsPerSource int           `mapstructure:"max_results_per_source" validate:"min=1"`
	RetryAttempts       int           `mapstructure:"retry_attempts" validate:"min=1,max=10"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RateLimitPerSecond  float64       `mapstructure:"rate_limit_per_second" validate:"gt=0"`
	Concurrency         int           `mapstructure:"concurrency" validate:"min=1"`
	Seed                int64         `mapstructure:"seed"`
	Catalogs            []string      `mapstructure:"catalogs"`
	Feeds               []Feed        `mapstructure:"feeds" validate:"dive"`
}

// Summarizer holds summarization configuration
type Summarizer struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=template gemini"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Concurrency int           `mapstructure:"concurrency" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Seed        int64         `mapstructure:"seed"`
}

// Database holds digest store configuration
type Database struct {
	Driver  string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DataDir string `mapstructure:"data_dir"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	// APIKey, when set, is required as a bearer token on job triggers.
	APIKey       string        `mapstructure:"api_key"`
}

// Output holds output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

// Load loads the configuration from defaults, an optional YAML file, a .env
// file and SCHOLARLY_* environment variables. Each call builds a fresh viper
// instance; nothing is cached process-wide.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".scholarly")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("SCHOLARLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("summarizer.api_key", "SCHOLARLY_SUMMARIZER_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database.dsn", "SCHOLARLY_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("server.api_key", "SCHOLARLY_SERVER_API_KEY", "ADMIN_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.App.ConfigFile = v.ConfigFileUsed()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	content := DefaultContentConfig()

	v.SetDefault("app.debug", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.max_articles_per_digest", content.MaxArticlesPerDigest)
	v.SetDefault("content.min_articles_per_digest", content.MinArticlesPerDigest)
	v.SetDefault("content.target_reading_time", content.TargetReadingTime)
	v.SetDefault("content.min_relevance_score", content.MinRelevanceScore)
	v.SetDefault("content.min_quality_score", content.MinQualityScore)
	v.SetDefault("content.min_subfield_variety", content.MinSubfieldVariety)
	v.SetDefault("content.exclude_older_than_days", content.ExcludeOlderThanDays)
	v.SetDefault("content.include_preprints", content.IncludePreprints)
	v.SetDefault("content.max_candidates", content.MaxCandidates)
	v.SetDefault("content.audience_level", string(content.AudienceLevel))
	v.SetDefault("content.include_technical_details", content.IncludeTechnicalDetails)
	v.SetDefault("content.emphasize_applications", content.EmphasizeApplications)
	v.SetDefault("content.editorial_style", string(content.EditorialStyle))

	v.SetDefault("sources.max_results_per_source", 25)
	v.SetDefault("sources.retry_attempts", 3)
	v.SetDefault("sources.retry_base_delay", "2s")
	v.SetDefault("sources.timeout", "30s")
	v.SetDefault("sources.rate_limit_per_second", 5.0)
	v.SetDefault("sources.concurrency", 4)
	v.SetDefault("sources.seed", 0)
	v.SetDefault("sources.catalogs", []string{"arxiv", "pubmed", "crossref"})

	v.SetDefault("summarizer.provider", "template")
	v.SetDefault("summarizer.model", "gemini-flash-lite-latest")
	v.SetDefault("summarizer.cache_ttl", "24h")
	v.SetDefault("summarizer.concurrency", 4)
	v.SetDefault("summarizer.timeout", "45s")
	v.SetDefault("summarizer.seed", 0)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.data_dir", ".scholarly")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("output.directory", "digests")
}

var validate = validator.New()

// Validate checks struct constraints and cross-field rules. Failures are
// returned as a ConfigurationError.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	for _, feed := range cfg.Sources.Feeds {
		if _, err := core.ParseField(feed.Field); err != nil {
			return err
		}
	}
	if cfg.Summarizer.Provider == "gemini" && cfg.Summarizer.APIKey == "" {
		return &core.ConfigurationError{Field: "summarizer.api_key", Message: "required when provider is gemini"}
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return &core.ConfigurationError{Field: "config", Message: err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatFieldError(e))
	}
	return &core.ConfigurationError{
		Field:   strings.ToLower(validationErrors[0].Namespace()),
		Message: strings.Join(messages, "; "),
	}
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be at least %s", field, strings.ToLower(e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
