package config

const (
	StorageDriverFirebase = "firebase"
	StorageDriverS3       = "s3"
)

type StorageConfig struct {
	Driver string   `env:"DRIVER" envDefault:"firebase"`
	S3     S3Config `envPrefix:"S3_"`
}

type S3Config struct {
	Endpoint        string `env:"ENDPOINT"`
	Region          string `env:"REGION" envDefault:"auto"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	BucketName      string `env:"BUCKET_NAME"`
	PublicURL       string `env:"PUBLIC_URL"`
}
