package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files next to the console binary with priority
// .env.local > .env. godotenv.Load never overwrites already-set vars,
// so real OS environment always wins and Load() sees the merged view.
// The list of files actually loaded is returned for startup logging.
func LoadDotEnv() []string {
	var loaded []string

	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}

	return loaded
}
