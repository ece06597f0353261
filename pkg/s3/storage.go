package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/storage"
)

const cacheControl = "public, max-age=31536000, immutable"

type Option interface {
	apply(*s3Storage)
}

type optionFunc func(*s3Storage)

func (o optionFunc) apply(s *s3Storage) {
	o(s)
}

func WithEndpoint(endpoint string) Option {
	return optionFunc(func(s *s3Storage) {
		s.endpoint = endpoint
	})
}

func WithRegion(region string) Option {
	return optionFunc(func(s *s3Storage) {
		s.region = region
	})
}

func WithCredential(accessKeyID, secretAccessKey string) Option {
	return optionFunc(func(s *s3Storage) {
		s.accessKeyID = accessKeyID
		s.secretAccessKey = secretAccessKey
	})
}

func WithBucketName(bucketName string) Option {
	return optionFunc(func(s *s3Storage) {
		s.bucketName = bucketName
	})
}

// WithPublicURL sets the public base the download URLs are built from,
// e.g. a custom domain in front of an R2 bucket.
func WithPublicURL(publicURL string) Option {
	return optionFunc(func(s *s3Storage) {
		s.publicURL = strings.TrimSuffix(publicURL, "/")
	})
}

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

type s3Storage struct {
	client          objectAPI
	endpoint        string
	region          string
	accessKeyID     string
	secretAccessKey string
	bucketName      string
	publicURL       string
}

// NewStorage builds an S3-compatible blob store (AWS S3, Cloudflare R2, MinIO).
func NewStorage(options ...Option) storage.Storage {
	s := &s3Storage{region: "auto"}
	for _, o := range options {
		o.apply(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Infof("s3 storage: connecting to bucket %s", s.bucketName)

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(s.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.accessKeyID, s.secretAccessKey, "")),
	)
	if err != nil {
		logger.Fatalf("s3 storage: load config: %s", err.Error())
	}

	s.client = awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
		}
		o.UsePathStyle = true
	})

	logger.Infof("s3 storage: connected to bucket %s", s.bucketName)
	return s
}

func (s *s3Storage) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(objectName),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("PutObject(%q): %w", objectName, err)
	}

	return s.publicURL + "/" + objectName, nil
}

// Remove reports storage.ErrObjectNotExist for a missing key. S3 and R2
// accept DeleteObject on a missing key, so the key is checked first.
func (s *s3Storage) Remove(ctx context.Context, objectName string) error {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
	})
	if isNotFound(err) {
		return fmt.Errorf("HeadObject(%q): %w", objectName, storage.ErrObjectNotExist)
	}
	if err != nil {
		return fmt.Errorf("HeadObject(%q): %w", objectName, err)
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("DeleteObject(%q): %w", objectName, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var statusErr interface{ HTTPStatusCode() int }
	return errors.As(err, &statusErr) && statusErr.HTTPStatusCode() == http.StatusNotFound
}

func (s *s3Storage) Shutdown() {
	logger.Info("s3 storage: shut down")
}
