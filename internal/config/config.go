package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string  `mapstructure:"ENV"`
	StudyID         string  `mapstructure:"STUDY_ID"`
	SubjectCount    int     `mapstructure:"SUBJECT_COUNT"`
	Seed            int64   `mapstructure:"SEED"`
	ReferenceYear   int     `mapstructure:"REFERENCE_YEAR"`
	DataDir         string  `mapstructure:"DATA_DIR"`
	OutputDir       string  `mapstructure:"OUTPUT_DIR"`
	MissingRate     float64 `mapstructure:"MISSING_RATE"`
	MapWorkers      int     `mapstructure:"MAP_WORKERS"`
	ContinueOnError bool    `mapstructure:"CONTINUE_ON_ERROR"`
	DatabaseURL     string  `mapstructure:"DATABASE_URL"`
	Port            string  `mapstructure:"PORT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("STUDY_ID", "CDISCPILOT01")
	v.SetDefault("SUBJECT_COUNT", 200)
	v.SetDefault("SEED", 1)
	v.SetDefault("REFERENCE_YEAR", 2024)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("OUTPUT_DIR", "./output")
	v.SetDefault("MISSING_RATE", 0.1)
	v.SetDefault("MAP_WORKERS", 4)
	v.SetDefault("CONTINUE_ON_ERROR", false)
	v.SetDefault("PORT", "8000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("STUDY_ID")
	v.BindEnv("SUBJECT_COUNT")
	v.BindEnv("SEED")
	v.BindEnv("REFERENCE_YEAR")
	v.BindEnv("DATA_DIR")
	v.BindEnv("OUTPUT_DIR")
	v.BindEnv("MISSING_RATE")
	v.BindEnv("MAP_WORKERS")
	v.BindEnv("CONTINUE_ON_ERROR")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("PORT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StudyFilePath is the sqlite file that carries the intermediate datasets.
func (c *Config) StudyFilePath() string {
	return c.DataDir + "/study.db"
}

// Validate checks that the configuration can drive a pipeline run.
func (c *Config) Validate() error {
	if c.StudyID == "" {
		return fmt.Errorf("STUDY_ID must not be empty")
	}
	if c.SubjectCount <= 0 {
		return fmt.Errorf("SUBJECT_COUNT must be positive, got %d", c.SubjectCount)
	}
	if c.MissingRate < 0 || c.MissingRate >= 1 {
		return fmt.Errorf("MISSING_RATE must be in [0,1), got %g", c.MissingRate)
	}
	if c.MapWorkers < 1 {
		return fmt.Errorf("MAP_WORKERS must be at least 1, got %d", c.MapWorkers)
	}
	return nil
}
