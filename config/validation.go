package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirements lists the settings that must be non-empty per environment.
var requirements = map[Environment][]string{
	Development: {"SERVER_PORT", "DB_NAME", "JWT_SECRET"},
	Test:        {"SERVER_PORT", "DB_NAME", "JWT_SECRET"},
	CI:          {"SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET"},
	Production: {
		"SERVER_PORT", "SERVER_HOST", "BASE_URL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"JWT_SECRET",
	},
}

func (c *Config) value(key string) string {
	switch key {
	case "SERVER_PORT":
		return c.ServerPort
	case "SERVER_HOST":
		return c.ServerHost
	case "BASE_URL":
		return c.BaseURL
	case "DB_HOST":
		return c.DBHost
	case "DB_PORT":
		return c.DBPort
	case "DB_USER":
		return c.DBUser
	case "DB_PASSWORD":
		return c.DBPassword
	case "DB_NAME":
		return c.DBName
	case "DB_SSL_MODE":
		return c.DBSSLMode
	case "JWT_SECRET":
		return c.JWTSecret
	}
	return ""
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError
	for _, key := range requirements[env] {
		// sqlite only needs a file name
		if cfg.DBDriver == "sqlite" && strings.HasPrefix(key, "DB_") && key != "DB_NAME" {
			continue
		}
		if cfg.value(key) == "" {
			errs = append(errs, ValidationError{Field: key, Message: "is required in " + string(env)})
		}
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"})
	}
	if env == Production && len(cfg.JWTSecret) > 0 && len(cfg.JWTSecret) < 32 {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must be at least 32 characters in production"})
	}
	if cfg.PageSize < 1 {
		errs = append(errs, ValidationError{Field: "PAGE_SIZE", Message: "must be positive"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{Field: "TOKEN_TTL", Message: "must be positive"})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
