package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no API key can be found for the gemini provider
var ErrMissingAPIKey = errors.New("API key not found: set GOOGLE_API_KEY (environment or .env) or pass --api-key")

// apiKeyVars are checked in order after the --api-key flag
var apiKeyVars = []string{"SECREV_API_KEY", "GOOGLE_API_KEY"}

// LoadAPIKey resolves the API credential.
// Priority order:
//  1. flagValue (--api-key)
//  2. SECREV_API_KEY / GOOGLE_API_KEY from the process environment
//  3. the same keys from a .env file in dir
func LoadAPIKey(flagValue, dir string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	v := viper.New()
	v.AutomaticEnv()

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		v.SetConfigFile(envPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read %s: %w", envPath, err)
		}
	}

	for _, key := range apiKeyVars {
		if value := v.GetString(key); value != "" {
			return value, nil
		}
	}

	return "", ErrMissingAPIKey
}
