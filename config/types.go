package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	SpaceTraders SpaceTradersConfig `mapstructure:"spacetraders"`
	Filter       FilterConfig       `mapstructure:"filter"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// SpaceTradersConfig holds API connection and pacing settings
type SpaceTradersConfig struct {
	Token       string        `mapstructure:"token" validate:"required"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	MinInterval time.Duration `mapstructure:"min_interval" validate:"gte=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=1,lte=10"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Systems     []string      `mapstructure:"systems" validate:"required,min=1,dive,required,alphanum"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets" validate:"dive,keys,required,endkeys,required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Color  bool   `mapstructure:"color"`
}
