package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-authgate/coffeeshop/internal/config"
	"github.com/go-authgate/coffeeshop/internal/handlers"
	"github.com/go-authgate/coffeeshop/internal/httpclient"
	"github.com/go-authgate/coffeeshop/internal/jwks"
	"github.com/go-authgate/coffeeshop/internal/logger"
	"github.com/go-authgate/coffeeshop/internal/metrics"
	"github.com/go-authgate/coffeeshop/internal/middleware"
	"github.com/go-authgate/coffeeshop/internal/services"
	"github.com/go-authgate/coffeeshop/internal/store"
	"github.com/go-authgate/coffeeshop/internal/token"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func main() {
	cfg := config.Load()
	l := logger.New(os.Stderr, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		_ = level.Error(l).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, l); err != nil {
		_ = level.Error(l).Log("msg", "coffeeshop stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, l log.Logger) error {
	m := graceful.NewManager()

	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	m.AddShutdownJob(db.Close)

	if cfg.DatabaseSeed {
		if err := db.Reset(); err != nil {
			return err
		}
		_ = level.Warn(l).Log("msg", "database reset with seed data")
	}

	var met *metrics.Metrics
	if cfg.MetricsEnabled {
		met = metrics.New()
	}

	gate, err := buildGate(cfg, l, met, m)
	if err != nil {
		return err
	}

	r, err := buildRouter(cfg, l, met, db, gate)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.AddRunningJob(func(ctx context.Context) error {
		_ = level.Info(l).Log("msg", "listening", "addr", cfg.ServerAddr, "issuer", cfg.Issuer())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	<-m.Done()
	return nil
}

func buildGate(cfg *config.Config, l log.Logger, met *metrics.Metrics, m *graceful.Manager) (*token.Gate, error) {
	client, err := httpclient.New(httpclient.Config{
		Timeout:            cfg.JWKSTimeout,
		MaxRetries:         cfg.JWKSMaxRetries,
		InsecureSkipVerify: cfg.JWKSInsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}

	opts := []jwks.Option{jwks.WithTimeout(cfg.JWKSTimeout)}
	if met != nil {
		opts = append(opts, jwks.WithObserver(met.ObserveJWKSFetch))
	}
	if cfg.JWKSInsecureSkipVerify && strings.HasPrefix(cfg.JWKSEndpoint(), "http://") {
		opts = append(opts, jwks.AllowPlainHTTP())
	}
	src, err := jwks.NewHTTPSource(cfg.JWKSEndpoint(), client, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.JWKSInsecureSkipVerify {
		_ = level.Warn(l).Log("msg", "JWKS TLS verification disabled", "endpoint", src.Endpoint())
	}

	var aside jwks.AsideClient
	if cfg.JWKSCache == config.JWKSCacheRedis {
		c, err := jwks.DialRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		m.AddShutdownJob(func() error {
			c.Close()
			return nil
		})
		aside = c
	}

	keys, err := jwks.New(cfg, src, aside)
	if err != nil {
		return nil, err
	}

	verifier, err := token.NewVerifier(
		token.NewKeyResolver(keys),
		cfg.Issuer(),
		cfg.APIAudience,
		token.WithAlgorithms(cfg.Algorithms...),
		token.WithLeeway(cfg.TokenLeeway),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build verifier: %w", err)
	}

	gateOpts := []token.GateOption{token.WithLogger(log.With(l, "component", "gate"))}
	if met != nil {
		gateOpts = append(gateOpts, token.WithRecorder(met))
	}
	return token.NewGate(verifier, gateOpts...), nil
}

func buildRouter(
	cfg *config.Config,
	l log.Logger,
	met *metrics.Metrics,
	db *store.Store,
	gate *token.Gate,
) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(log.With(l, "component", "http")),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	if met != nil {
		r.Use(met.Middleware())
		r.GET("/metrics", gin.WrapH(met.Handler()))
	}
	r.GET("/healthz", handlers.Health(db))

	if cfg.EnableRateLimit {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			StoreType:         cfg.RateLimitStore,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			RedisAddr:         cfg.RedisAddr,
			RedisPassword:     cfg.RedisPassword,
			RedisDB:           cfg.RedisDB,
			Logger:            l,
		})
		if err != nil {
			return nil, err
		}
		r.Use(limiter)
	}

	handlers.RegisterFallbacks(r)
	drinks := handlers.NewDrinkHandler(services.NewDrinkService(db), log.With(l, "component", "drinks"))
	handlers.RegisterDrinkRoutes(r, drinks, gate)
	return r, nil
}
