package config

import "time"

type RedisConfig struct {
	Host        string        `env:"HOST,required"`
	Port        int           `env:"PORT" envDefault:"6379"`
	Username    string        `env:"USERNAME"`
	Password    string        `env:"PASSWORD"`
	DB          int           `env:"DB"`
	TLS         bool          `env:"TLS"`
	PoolSize    int           `env:"POOL_SIZE"`
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"10s"`
	Channel     string        `env:"AUTH_STATE_CHANNEL" envDefault:"PHOTO_FEED:AUTH_STATE"`
}
