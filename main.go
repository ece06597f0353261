package main

import (
	"context"
	"log"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/kinkando/photo-feed-service/config"
	transport "github.com/kinkando/photo-feed-service/http"
	"github.com/kinkando/photo-feed-service/pkg/database/redis"
	"github.com/kinkando/photo-feed-service/pkg/envconfig"
	"github.com/kinkando/photo-feed-service/pkg/google"
	httpinterceptor "github.com/kinkando/photo-feed-service/pkg/http/interceptor"
	httpmiddleware "github.com/kinkando/photo-feed-service/pkg/http/middleware"
	httpserver "github.com/kinkando/photo-feed-service/pkg/http/server"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/option"
	"github.com/kinkando/photo-feed-service/pkg/s3"
	"github.com/kinkando/photo-feed-service/pkg/session"
	"github.com/kinkando/photo-feed-service/pkg/storage"
	"github.com/kinkando/photo-feed-service/repository"
	"github.com/kinkando/photo-feed-service/service"
)

func main() {
	var cfg config.Config
	if err := envconfig.Parse(&cfg); err != nil {
		log.Fatal(err)
	}
	logger.New(cfg.App.Environment, cfg.App.LogLevel)
	defer logger.Sync()

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Fatalf("timezone %s: %s", cfg.App.Timezone, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
	redisClient, err := redis.NewClient(ctx, cfg.Redis, redis.WithPingOnConnect())
	cancel()
	if err != nil {
		logger.Fatal(err)
	}
	defer redis.Shutdown(redisClient)

	credential := []byte(cfg.Google.FirebaseCredential)
	firebaseApp := google.NewFirebaseApp(credential, cfg.Google.ProjectID, cfg.Google.Storage.BucketName)
	firebaseAuthen := google.NewFirebaseAuthen(firebaseApp)
	firestoreClient := google.NewFirestore(firebaseApp)
	defer google.ShutdownFirestore(firestoreClient)

	identityClient := &http.Client{
		Timeout: 15 * time.Second,
		Transport: httpinterceptor.NewRateLimiterTransport(
			option.WithHTTPInterceptorRateLimiterTransport(httpinterceptor.NewAPIKeyTransport(cfg.Google.Identity.APIKey, nil)),
			option.WithHTTPInterceptorRequestsPerSecond(cfg.Google.Identity.RateLimit),
		),
	}
	identity := google.NewIdentity(firebaseAuthen, identityClient)

	blobStorage := newStorage(cfg, credential)
	defer blobStorage.Shutdown()

	observer, err := session.NewSharedObserver(context.Background(), session.NewRedisObserver(redisClient, cfg.Redis.Channel))
	if err != nil {
		logger.Fatal(err)
	}
	defer observer.Close()
	logSessionEvents(observer)

	cacheRepository := repository.NewCacheRepository(redisClient, cfg.App.AccessTokenExpired, cfg.App.RefreshTokenExpired)
	userRepository := repository.NewUserRepository(firestoreClient)
	feedRepository := repository.NewFeedRepository(firestoreClient)
	connectionRepository := repository.NewConnectionRepository(firestoreClient)

	validate := validator.New()
	jwtService := service.NewJWTService(cfg.App.JWTKey, cfg.App.AccessTokenExpired, cfg.App.RefreshTokenExpired)
	userService := service.NewUserService(userRepository, identity, blobStorage, cfg.Image)
	authenService := service.NewAuthenService(validate, identity, userService, cacheRepository, jwtService, observer)
	feedService := service.NewFeedService(feedRepository, blobStorage, cfg.Image, location)
	searchService := service.NewSearchService(userRepository, cfg.Search.Limit)
	connectivityService := service.NewConnectivityService(connectionRepository, blobStorage)

	httpServer := httpserver.New(
		httpserver.WithPort(cfg.App.Port),
		httpserver.WithCORSOrigins(cfg.App.CORSOrigins...),
		httpserver.WithShutdownTimeout(cfg.App.ShutdownTimeout),
		httpserver.WithRedactedFields("password", "confirmPassword", "refreshToken", "accessToken", "idToken"),
		httpserver.WithMiddlewares(
			httpmiddleware.RequestID,
			httpmiddleware.NewProfileProvider(
				cfg.App.JWTKey,
				redisClient,
				"GET /livez",
				"GET /readyz",
				"GET /readyz/firebase",
				"POST /auth/signup",
				"POST /auth/signin",
				"POST /auth/password/reset",
				"POST /auth/token/refresh",
				"POST /auth/signout",
			),
		),
	)

	e := httpServer.Routers()
	transport.NewHealthzHandler(e, cacheRepository, connectivityService)
	transport.NewAuthenHandler(e, cfg.App.APIKey, authenService)
	transport.NewUserHandler(e, validate, cfg.Image.MaxUploadSize, userService, feedService)
	transport.NewSearchHandler(e, cfg.Search.Debounce, searchService, observer)
	transport.NewFeedHandler(e, validate, cfg.Image.MaxUploadSize, feedService)
	transport.NewAdminHandler(e, userService)

	httpServer.ListenAndServe()
	httpServer.GracefulShutdown()
}

func newStorage(cfg config.Config, credential []byte) storage.Storage {
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		return s3.NewStorage(
			s3.WithEndpoint(cfg.Storage.S3.Endpoint),
			s3.WithRegion(cfg.Storage.S3.Region),
			s3.WithCredential(cfg.Storage.S3.AccessKeyID, cfg.Storage.S3.SecretAccessKey),
			s3.WithBucketName(cfg.Storage.S3.BucketName),
			s3.WithPublicURL(cfg.Storage.S3.PublicURL),
		)
	case config.StorageDriverFirebase:
		return google.NewStorage(credential, cfg.Google.Storage.BucketName, cfg.Google.Storage.ExpiredTime)
	default:
		logger.Fatalf("storage: unknown driver %q", cfg.Storage.Driver)
		return nil
	}
}

// logSessionEvents keeps an audit trail of sign-ins and sign-outs across all
// replicas. The subscription lives for the whole process.
func logSessionEvents(observer session.Observer) {
	_, err := observer.Subscribe(context.Background(), func(event session.Event) {
		logger.Infof("session: %s %s at %s", event.UserID, event.State, event.At.Format(time.RFC3339))
	})
	if err != nil {
		logger.Warnf("session: subscribe: %s", err.Error())
	}
}
