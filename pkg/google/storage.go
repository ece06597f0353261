package google

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	cloudStorage "cloud.google.com/go/storage"
	"github.com/kinkando/photo-feed-service/pkg/generator"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/storage"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
)

const (
	FirebaseStorageBaseURL = "https://firebasestorage.googleapis.com/v0/b"

	downloadTokenMetadataKey = "firebaseStorageDownloadTokens"
)

type firebaseStorage struct {
	client     *cloudStorage.Client
	config     *jwt.Config
	bucketName string
	expireTime time.Duration
}

// NewStorage connects to the Firebase Storage bucket. With a zero expireTime
// objects get a token download URL that never expires; otherwise a V4 signed
// URL valid for expireTime is returned.
func NewStorage(credential []byte, bucketName string, expireTime time.Duration) storage.Storage {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("cloud storage: connecting")

	client, err := cloudStorage.NewClient(ctx, option.WithCredentialsJSON(credential))
	if err != nil {
		logger.Fatal(err)
	}

	conf, err := google.JWTConfigFromJSON(credential)
	if err != nil {
		logger.Fatalf("unable to load jwt config from json credential: %+v", err)
	}

	logger.Infof("cloud storage: connected to bucket %s", bucketName)

	return &firebaseStorage{
		client:     client,
		config:     conf,
		bucketName: bucketName,
		expireTime: expireTime,
	}
}

func (s *firebaseStorage) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	token := generator.UUID()

	wc := s.client.Bucket(s.bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = map[string]string{downloadTokenMetadataKey: token}
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("Object(%q).Write: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Object(%q).Close: %w", objectName, err)
	}

	if s.expireTime > 0 {
		return s.signedURL(objectName)
	}
	return DownloadURL(s.bucketName, objectName, token), nil
}

func (s *firebaseStorage) Remove(ctx context.Context, objectName string) error {
	o := s.client.Bucket(s.bucketName).Object(objectName)
	if err := o.Delete(ctx); err != nil {
		if errors.Is(err, cloudStorage.ErrObjectNotExist) {
			return fmt.Errorf("Object(%q).Delete: %w", objectName, storage.ErrObjectNotExist)
		}
		return fmt.Errorf("Object(%q).Delete: %w", objectName, err)
	}

	return nil
}

func (s *firebaseStorage) signedURL(objectName string) (string, error) {
	opts := &cloudStorage.SignedURLOptions{
		Scheme:         cloudStorage.SigningSchemeV4,
		Method:         "GET",
		GoogleAccessID: s.config.Email,
		PrivateKey:     s.config.PrivateKey,
		Expires:        time.Now().Add(s.expireTime),
	}
	fileURL, err := cloudStorage.SignedURL(s.bucketName, objectName, opts)
	if err != nil {
		return "", fmt.Errorf("storage.SignedURL: %w", err)
	}
	return fileURL, nil
}

func (s *firebaseStorage) Shutdown() {
	logger.Info("cloud storage: shutting down")
	if err := s.client.Close(); err != nil {
		logger.Errorf("cloud storage: close: %s", err.Error())
		return
	}
	logger.Info("cloud storage: shut down")
}

// DownloadURL builds the token URL the Firebase client SDKs return from
// getDownloadURL.
func DownloadURL(bucketName, objectName, token string) string {
	return fmt.Sprintf("%s/%s/o/%s?alt=media&token=%s",
		FirebaseStorageBaseURL, bucketName, url.PathEscape(objectName), url.QueryEscape(token))
}
