package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/origon-labs/apiutils/logger"
)

// loadDotEnv loads a .env file into the process environment if one exists
// in the working directory. Values already present in the environment win,
// matching godotenv's non-overload behavior.
func loadDotEnv(path string) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("Failed to load .env file", logger.Fields(
			"path", path,
			logger.FieldError, err.Error(),
		))
	}
}

// loadFileValues reads config.yml from the given folder and returns the
// values keyed by registered setting name. A missing file is not an error;
// an unreadable one is reported and treated as absent.
func loadFileValues(folder string) map[string]string {
	values := make(map[string]string)
	if folder == "" {
		return values
	}

	path := filepath.Join(folder, "config.yml")
	if _, err := os.Stat(path); err != nil {
		return values
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Failed to read config file", logger.Fields(
			"path", path,
			logger.FieldError, err.Error(),
		))
		return values
	}

	// File keys are the lowercased setting names.
	for _, s := range registry() {
		key := strings.ToLower(s.Name)
		if v.IsSet(key) {
			values[s.Name] = v.GetString(key)
		}
	}
	return values
}
