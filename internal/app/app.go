// Package app wires configuration, storage, services and transport into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"cnmaturity/internal/cache"
	"cnmaturity/internal/catalog"
	"cnmaturity/internal/config"
	"cnmaturity/internal/knowledge"
	"cnmaturity/internal/metrics"
	"cnmaturity/internal/repository"
	"cnmaturity/internal/service"
	"cnmaturity/internal/session"
	"cnmaturity/internal/transport/rest"
	"cnmaturity/internal/transport/ws"
)

const pingTimeout = 5 * time.Second

// App holds the long-lived components of a running server
type App struct {
	Catalog     *catalog.Catalog
	Library     *knowledge.Library
	Sessions    *session.Manager
	Assessments *service.AssessmentService
	Auth        *service.AuthService
	Hub         *ws.Hub
	Recorder    *metrics.Recorder
	Handler     http.Handler

	logger *zap.Logger
	mongo  *mongo.Client
	redis  *redis.Client
}

// New connects the configured backends and builds the HTTP handler.
// The returned App must be closed.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	var db *mongo.Database
	if cfg.NeedsMongo() {
		if a.mongo, err = ConnectMongo(ctx, cfg.Mongo.URI); err != nil {
			return nil, err
		}
		db = a.mongo.Database(cfg.Mongo.Database)
		logger.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
	}

	a.Catalog, a.Library, err = LoadContent(ctx, cfg.Catalog, db)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("questions", a.Catalog.Len()),
		zap.Strings("categories", a.Catalog.Categories()),
		zap.Int("articles", a.Library.Len()),
	)

	store, err := a.sessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if a.Recorder, err = metrics.NewRecorder(reg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	var results repository.ResultRepo
	if cfg.Results.Archive {
		results = repository.NewResultRepo(db)
	}

	a.Auth = service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.Sessions = session.NewManager(a.Catalog, store, cfg.Scoring.Thresholds)
	a.Assessments = service.NewAssessmentService(a.Sessions, a.Auth, results, a.Recorder, logger)

	// The hub implements service.Broadcaster
	a.Hub = ws.NewHub(logger)
	a.Assessments.SetBroadcaster(a.Hub)

	a.Handler = rest.NewRouter(&rest.Container{
		AssessmentService:  a.Assessments,
		CatalogService:     service.NewCatalogService(a.Catalog, a.Library),
		AuthService:        a.Auth,
		WSHub:              a.Hub,
		Recorder:           a.Recorder,
		Logger:             logger,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})
	return a, nil
}

func (a *App) sessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Store != config.StoreRedis {
		a.logger.Info("using in-memory session store",
			zap.Int("capacity", cfg.Session.Capacity),
			zap.Duration("ttl", cfg.Session.TTL),
		)
		return session.NewMemoryStore(cfg.Session.Capacity, cfg.Session.TTL), nil
	}

	a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Redis.Addr, err)
	}
	a.logger.Info("using Redis session store", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Session.TTL))
	return cache.NewSessionStore(a.redis, cfg.Session.TTL), nil
}

// Close stops the hub and disconnects the backends
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ConnectMongo connects and pings MongoDB
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}
