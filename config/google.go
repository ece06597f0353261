package config

import "time"

type GoogleConfig struct {
	FirebaseCredential string              `env:"FIREBASE_CREDENTIAL,required"`
	ProjectID          string              `env:"PROJECT_ID,required"`
	Identity           IdentityConfig      `envPrefix:"IDENTITY_"`
	Storage            GoogleStorageConfig `envPrefix:"STORAGE_"`
}

type IdentityConfig struct {
	APIKey    string `env:"API_KEY,required"`
	RateLimit int    `env:"RATE_LIMIT" envDefault:"20"`
}

type GoogleStorageConfig struct {
	BucketName  string        `env:"BUCKET_NAME"`
	ExpiredTime time.Duration `env:"EXPIRED_TIME"`
}
