package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/s0up4200/tradingpost/spacetraders"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRADINGPOST_LOGGING_LEVEL
const EnvPrefix = "TRADINGPOST"

// Load loads the configuration from file and environment. The file is
// optional unless configPath names one explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tradingpost"))
		}

		// Check /etc
		v.AddConfigPath("/etc/tradingpost/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads environment variables from the given files, defaulting to
// ./.env. Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", file, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// SpaceTraders defaults
	v.SetDefault("spacetraders.token", "")
	v.SetDefault("spacetraders.base_url", spacetraders.DefaultBaseURL)
	v.SetDefault("spacetraders.min_interval", spacetraders.DefaultMinInterval)
	v.SetDefault("spacetraders.concurrency", 1)
	v.SetDefault("spacetraders.timeout", spacetraders.DefaultTimeout)
	v.SetDefault("spacetraders.systems", spacetraders.DefaultSystems)
	v.SetDefault("spacetraders.user_agent", spacetraders.DefaultUserAgent)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// bindEnv maps TRADINGPOST_SECTION_KEY variables onto config keys. The token
// also honours the SPACETRADERS_TOKEN variable.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("spacetraders.token", EnvPrefix+"_SPACETRADERS_TOKEN", "SPACETRADERS_TOKEN")
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	for i, sys := range cfg.SpaceTraders.Systems {
		cfg.SpaceTraders.Systems[i] = strings.ToUpper(strings.TrimSpace(sys))
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// describe renders a field error using config key names
func describe(fe validator.FieldError) string {
	// drop the leading "Config."
	_, key, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("invalid %s: %v (must be one of %s)", key, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("invalid %s: %v (failed %s=%s)", key, fe.Value(), fe.Tag(), fe.Param())
	}
}
