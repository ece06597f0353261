package config

type Config struct {
	App     AppConfig     `envPrefix:"APP_"`
	Google  GoogleConfig  `envPrefix:"GOOGLE_"`
	Storage StorageConfig `envPrefix:"STORAGE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Search  SearchConfig  `envPrefix:"SEARCH_"`
	Image   ImageConfig   `envPrefix:"IMAGE_"`
}
