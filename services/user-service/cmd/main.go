package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/config"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/handler"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/repository"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/session"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/usecase"
	"github.com/vitor-afonso/iron-connections-server/shared/auth"
	"github.com/vitor-afonso/iron-connections-server/shared/mailer"
	"github.com/vitor-afonso/iron-connections-server/shared/security"
	"github.com/vitor-afonso/iron-connections-server/shared/validation"
)

type stores struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
	healthCheck   func(ctx context.Context) error
	close         func(ctx context.Context) error
}

func main() {
	bootstrap := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := openStores(ctx, cfg, &logger)

	validator, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	hasher := security.NewPasswordHasher(security.PasswordParams{
		TimeCost:    cfg.Password.TimeCost,
		MemoryCost:  cfg.Password.MemoryCost,
		Parallelism: cfg.Password.Parallelism,
	})
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Audience, cfg.Token.Issuer, cfg.Token.Secret)
	tokens := session.NewTokenService(jwtAuth, cfg.Token.ExpiresIn)

	var welcome usecase.WelcomeNotifier
	if m := mailer.NewMailerFromEnv(&logger); m != nil {
		welcome = usecase.NewMailWelcomeNotifier(m)
	}

	router := handler.NewRouter(handler.RouterParams{
		AuthUsecase:    usecase.NewAuthUsecase(s.users, hasher, tokens, validator, welcome, &logger),
		UserUsecase:    usecase.NewUserUsecase(s.users, hasher, validator, &logger),
		GraphReader:    usecase.NewGraphReader(s.users, s.posts, s.comments, s.notifications),
		Logger:         &logger,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AllowedOrigin:  cfg.HTTP.AllowedOrigin,
		HealthCheck:    s.healthCheck,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("store", cfg.StoreDriver).Msg("user service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to serve HTTP")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down HTTP server gracefully")
	}
	if err := s.close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close store")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout)
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger.Level(level).With().Timestamp().Str("service", "user-service").Logger()
}

func openStores(ctx context.Context, cfg *config.UserServiceConfig, logger *zerolog.Logger) stores {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		memory := repository.NewMemoryStore()
		return stores{
			users:         memory,
			posts:         memory,
			comments:      memory,
			notifications: memory,
			close:         func(context.Context) error { return nil },
		}
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create MongoDB client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	return stores{
		users:         repository.NewUserMongoRepository(ctx, logger, db),
		posts:         repository.NewPostMongoRepository(db),
		comments:      repository.NewCommentMongoRepository(db),
		notifications: repository.NewNotificationMongoRepository(db),
		healthCheck: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
}
