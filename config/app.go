package config

import "time"

type AppConfig struct {
	Environment         string        `env:"ENVIRONMENT"`
	LogLevel            string        `env:"LOG_LEVEL"`
	Port                int           `env:"PORT" envDefault:"3000"`
	JWTKey              string        `env:"JWT_KEY,required"`
	APIKey              string        `env:"API_KEY,required"`
	AccessTokenExpired  time.Duration `env:"ACCESS_TOKEN_EXPIRED,required"`
	RefreshTokenExpired time.Duration `env:"REFRESH_TOKEN_EXPIRED,required"`
	Timezone            string        `env:"TIMEZONE" envDefault:"UTC"`
	CORSOrigins         []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
