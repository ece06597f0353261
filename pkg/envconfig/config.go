package envconfig

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// Parse loads an optional .env file and fills cfg, which must be a pointer.
func Parse[T any](cfg *T) error {
	if err := godotenv.Load(); err != nil {
		log.Warnf("unable to load .env file: %+v", err)
	}

	return env.Parse(cfg)
}
