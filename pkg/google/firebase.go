package google

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"google.golang.org/api/option"
)

func NewFirebaseApp(credential []byte, projectID, bucketName string) *firebase.App {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: bucketName,
	}, option.WithCredentialsJSON(credential))
	if err != nil {
		logger.Fatalf("firebase: new app: %s", err.Error())
	}

	return app
}

func NewFirebaseAuthen(app *firebase.App) *auth.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := app.Auth(ctx)
	if err != nil {
		logger.Fatalf("firebase: auth client: %s", err.Error())
	}
	return client
}

func NewFirestore(app *firebase.App) *firestore.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("firestore: connecting")

	client, err := app.Firestore(ctx)
	if err != nil {
		logger.Fatalf("firestore: connect: %s", err.Error())
	}

	logger.Info("firestore: connected")
	return client
}

func ShutdownFirestore(client *firestore.Client) {
	logger.Info("firestore: shutting down")
	if err := client.Close(); err != nil {
		logger.Errorf("firestore: close: %s", err.Error())
		return
	}
	logger.Info("firestore: shutdown")
}
