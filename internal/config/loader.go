package config

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/csvimport/internal/store"
)

// LookupFunc reports the value of an environment variable and whether it is set.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with a custom variable source.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
//
// Tags: env names the variable, envAlt a fallback, default the value used when
// neither is set, required fails the load instead. allowEmpty keeps an
// explicitly empty variable empty rather than applying the default. unit:"bytes"
// parses sizes such as 512KB or 100MB.
func loadStruct(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, set := lookup(envName)
		if value == "" {
			if alt := field.Tag.Get("envAlt"); alt != "" {
				if altVal, altSet := lookup(alt); altSet && altVal != "" {
					value, set = altVal, true
				}
			}
		}

		if value == "" {
			if set && field.Tag.Get("allowEmpty") == "true" {
				fieldVal.SetString("")
				continue
			}
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = field.Tag.Get("default")
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value, field.Tag.Get("unit")); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value, unit string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		switch {
		case field.Type() == reflect.TypeOf(time.Duration(0)):
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		case unit == "bytes":
			n, err := ParseByteSize(value)
			if err != nil {
				return err
			}
			field.SetInt(n)
		default:
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

var byteUnits = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseByteSize parses a plain byte count or one with a KB, MB or GB suffix
// (binary multiples, case-insensitive).
func ParseByteSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	mult := int64(1)
	for _, u := range byteUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			mult = u.mult
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size: %d is negative", n)
	}
	if n > math.MaxInt64/mult {
		return 0, fmt.Errorf("invalid size: %s overflows int64", strings.TrimSpace(s))
	}
	return n * mult, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	driver, err := store.ResolveDriver(store.Config{Driver: c.Database.Driver, URL: c.Database.URL})
	if err != nil {
		errs = append(errs, fmt.Sprintf("DB_DRIVER (%q) must be sqlite or postgres", c.Database.Driver))
	}
	if driver == store.DriverPostgres && c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required for postgres")
	}
	if err := store.ValidateIdentifier(c.Database.Table); err != nil {
		errs = append(errs, fmt.Sprintf("DB_TABLE (%q) must be a plain SQL identifier", c.Database.Table))
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}
	if c.Upload.Timeout <= 0 {
		errs = append(errs, "UPLOAD_TIMEOUT must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Postgres connection strings are masked; SQLite paths are shown.
func (c *Config) String() string {
	dbURL := c.Database.URL
	if driver, _ := store.ResolveDriver(store.Config{Driver: c.Database.Driver, URL: dbURL}); driver == store.DriverPostgres {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {Driver: %q, URL: %s, Table: %q}, ",
		c.Database.Driver, dbURL, c.Database.Table))
	b.WriteString(fmt.Sprintf("Upload: {MaxFileSize: %d, MaxWaitTime: %s, Timeout: %s, ArtifactPath: %q}, ",
		c.Upload.MaxFileSize, c.Upload.MaxWaitTime, c.Upload.Timeout, c.Upload.ArtifactPath))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
