package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"surveyml/domain/model"
	"surveyml/internal/errors"
)

// Source kinds
const (
	SourceExcel    = "excel"
	SourceDatabase = "database"
	SourceDemo     = "demo"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  model.PipelineConfig `yaml:"pipeline"`
	Source    SourceConfig         `yaml:"source"`
	Server    ServerConfig         `yaml:"server"`
	Tokenizer string               `yaml:"tokenizer"`
	LogLevel  string               `yaml:"log_level"`
}

// SourceConfig selects where survey responses are read from
type SourceConfig struct {
	Kind           string `yaml:"kind"`
	ExcelFile      string `yaml:"excel_file"`
	ExcelSheet     string `yaml:"excel_sheet"`
	ExcelHeaderRow int    `yaml:"excel_header_row"`
	DatabaseURL    string `yaml:"database_url"`
	DatabaseDriver string `yaml:"database_driver"`
	SurveyTable    string `yaml:"survey_table"`
	DemoRows       int    `yaml:"demo_rows"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string        `yaml:"port"`
	GinMode     string        `yaml:"gin_mode"`
	MaxSessions int           `yaml:"max_sessions"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Pipeline: model.DefaultPipelineConfig(),
		Source: SourceConfig{
			ExcelHeaderRow: 1,
			DatabaseDriver: "postgres",
			SurveyTable:    "survey_responses",
			DemoRows:       200,
		},
		Server: ServerConfig{
			Port:        "8080",
			GinMode:     "debug",
			MaxSessions: 32,
			SessionTTL:  2 * time.Hour,
		},
		Tokenizer: "auto",
		LogLevel:  "INFO",
	}
}

// Load reads .env, then the CONFIG_FILE YAML overlay, then environment variables, and
// validates the result
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(config, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if path := os.Getenv("STOPLIST_FILE"); path != "" {
		stopList, err := LoadStopList(path, config.Pipeline.StopList)
		if err != nil {
			return nil, err
		}
		config.Pipeline.StopList = stopList
	}

	resolveSourceKind(&config.Source)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "reading config file %s", path)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "parsing config file %s", path)
	}
	return nil
}

// LoadStopList reads a YAML stop-list. The file is either a plain list of terms or a
// mapping with terms, max_particle_runes and drop_numerals; absent keys keep base values.
func LoadStopList(path string, base model.StopList) (model.StopList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrapf(errors.ConfigInvalid(err.Error()), "reading stop-list %s", path)
	}

	var terms []string
	if err := yaml.Unmarshal(data, &terms); err == nil {
		base.Terms = terms
		return base, nil
	}

	stopList := base
	if err := yaml.Unmarshal(data, &stopList); err != nil {
		return base, errors.Wrapf(errors.ConfigInvalid(err.Error()), "parsing stop-list %s", path)
	}
	return stopList, nil
}

func applyEnv(config *Config) error {
	p := &config.Pipeline
	var err error

	if p.Features.MaxFeatures, err = getEnvInt("MAX_FEATURES", p.Features.MaxFeatures); err != nil {
		return err
	}
	if p.Features.NGramMax, err = getEnvInt("NGRAM_MAX", p.Features.NGramMax); err != nil {
		return err
	}
	if p.Features.MinDF, err = getEnvInt("MIN_DF", p.Features.MinDF); err != nil {
		return err
	}
	if p.Features.MaxDF, err = getEnvFloat("MAX_DF", p.Features.MaxDF); err != nil {
		return err
	}
	if p.Models.TreeMaxDepth, err = getEnvInt("TREE_MAX_DEPTH", p.Models.TreeMaxDepth); err != nil {
		return err
	}
	if os.Getenv("TREE_MAX_DEPTH") != "" {
		p.Models.ForestMaxDepth = p.Models.TreeMaxDepth
	}
	if p.Models.ForestTrees, err = getEnvInt("FOREST_TREES", p.Models.ForestTrees); err != nil {
		return err
	}
	if p.Models.BoostingStages, err = getEnvInt("BOOSTING_STAGES", p.Models.BoostingStages); err != nil {
		return err
	}
	var seed int
	if seed, err = getEnvInt("SEED", int(p.Training.Seed)); err != nil {
		return err
	}
	p.Training.Seed = int64(seed)
	if p.TopN, err = getEnvInt("TOP_N", p.TopN); err != nil {
		return err
	}

	s := &config.Source
	s.Kind = getEnvOrDefault("SURVEY_SOURCE", s.Kind)
	s.ExcelFile = getEnvOrDefault("EXCEL_FILE", s.ExcelFile)
	s.ExcelSheet = getEnvOrDefault("EXCEL_SHEET", s.ExcelSheet)
	if s.ExcelHeaderRow, err = getEnvInt("EXCEL_HEADER_ROW", s.ExcelHeaderRow); err != nil {
		return err
	}
	s.DatabaseURL = getEnvOrDefault("DATABASE_URL", s.DatabaseURL)
	s.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", s.DatabaseDriver)
	s.SurveyTable = getEnvOrDefault("SURVEY_TABLE", s.SurveyTable)
	if s.DemoRows, err = getEnvInt("DEMO_ROWS", s.DemoRows); err != nil {
		return err
	}

	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	if config.Server.MaxSessions, err = getEnvInt("MAX_SESSIONS", config.Server.MaxSessions); err != nil {
		return err
	}
	if config.Server.SessionTTL, err = getEnvDuration("SESSION_TTL", config.Server.SessionTTL); err != nil {
		return err
	}
	config.Tokenizer = getEnvOrDefault("TOKENIZER", config.Tokenizer)
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)
	return nil
}

// resolveSourceKind picks excel, then database, then demo when no kind is set.
func resolveSourceKind(s *SourceConfig) {
	if s.Kind != "" {
		s.Kind = strings.ToLower(s.Kind)
		return
	}
	switch {
	case s.ExcelFile != "":
		s.Kind = SourceExcel
	case s.DatabaseURL != "":
		s.Kind = SourceDatabase
	default:
		s.Kind = SourceDemo
	}
}

func validateConfig(config *Config) error {
	if err := config.Pipeline.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	switch config.Source.Kind {
	case SourceExcel:
		if config.Source.ExcelFile == "" {
			return errors.ConfigInvalid("EXCEL_FILE is required for the excel source")
		}
		if config.Source.ExcelHeaderRow < 1 {
			return errors.ConfigInvalid("EXCEL_HEADER_ROW must be at least 1")
		}
	case SourceDatabase:
		if config.Source.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the database source")
		}
		if config.Source.SurveyTable == "" {
			return errors.ConfigInvalid("SURVEY_TABLE must not be empty")
		}
	case SourceDemo:
		if config.Source.DemoRows < 1 {
			return errors.ConfigInvalid("DEMO_ROWS must be at least 1")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown survey source %q", config.Source.Kind))
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if config.Server.MaxSessions < 1 {
		return errors.ConfigInvalid("MAX_SESSIONS must be at least 1")
	}
	if config.Server.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, errors.ConfigInvalid(fmt.Sprintf("%s must be a duration such as 30m, got %q", key, value))
	}
	return d, nil
}
