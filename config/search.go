package config

import "time"

type SearchConfig struct {
	Limit    int           `env:"LIMIT" envDefault:"3"`
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"300ms"`
}

type ImageConfig struct {
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	MaxEdge       int   `env:"MAX_EDGE" envDefault:"1080"`
	ProfileEdge   int   `env:"PROFILE_EDGE" envDefault:"400"`
	Quality       int   `env:"QUALITY" envDefault:"85"`
}
