package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory or its parent into
// the process environment. Variables already set are not overridden. It
// returns the path it loaded, or "" when no file was found.
func LoadEnv() (string, error) {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return candidate, err
		}
		return candidate, nil
	}
	return "", nil
}
