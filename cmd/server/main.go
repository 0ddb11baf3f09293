package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"tickerdesk/internal/auth"
	"tickerdesk/internal/platform/config"
	"tickerdesk/internal/platform/database"
	"tickerdesk/internal/platform/logger"
	"tickerdesk/internal/platform/metrics"
	"tickerdesk/internal/platform/redis"
	"tickerdesk/internal/quotes"
	"tickerdesk/internal/session"
	sessionstore "tickerdesk/internal/session/store"
	httptransport "tickerdesk/internal/transport/http"
	userstore "tickerdesk/internal/user/store"
	"tickerdesk/migrations"
	"tickerdesk/pkg/secrets"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing tickerdesk",
		"addr", cfg.Addr,
		"database_configured", cfg.DatabaseURL != "",
		"redis_configured", cfg.RedisURL != "",
	)

	mx := metrics.New()

	// Credential store: Postgres when configured, otherwise in-memory for
	// local development.
	var users auth.UserStore
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck
		if err := pool.Migrate(context.Background(), migrations.FS); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgres(pool.DB())
	} else {
		log.Warn("no DATABASE_URL set, using in-memory user store")
		users = userstore.NewInMemory()
	}

	// Session store: Redis when configured, otherwise in-memory with a
	// periodic expiry sweep.
	var sessions session.Store
	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck
		sessions = sessionstore.NewRedis(rdb.Client)
		go recordRedisStats(rdb)
	} else {
		log.Warn("no REDIS_URL set, using in-memory session store")
		mem := sessionstore.NewInMemory()
		sessions = mem
		go sweepExpired(mem)
	}

	manager := session.NewManager(sessions, session.Config{
		CookieName:    cfg.SessionCookieName,
		TTL:           cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	}, session.WithLogger(log), session.WithMetrics(mx))

	hasher := secrets.NewHasher(cfg.BcryptCost)
	local := auth.NewLocalStrategy(users, hasher,
		auth.WithLogger(log), auth.WithMetrics(mx))
	registrar := auth.NewRegistrar(users, hasher,
		auth.WithLogger(log), auth.WithMetrics(mx))

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
	googleStrategy := auth.NewGoogleStrategy(users, oauthCfg,
		auth.WithLogger(log), auth.WithMetrics(mx))

	quoteClient := quotes.New(quotes.Config{
		BaseURL: cfg.QuoteBaseURL,
		APIKey:  cfg.QuoteAPIKey,
		Timeout: cfg.QuoteTimeout,
	}, quotes.WithLogger(log), quotes.WithMetrics(mx))

	handler := httptransport.NewHandler(
		local,
		googleStrategy,
		registrar,
		manager,
		quoteClient,
		auth.NewStateSigner(cfg.StateSigningKey),
		log,
	)
	router := httptransport.NewRouter(handler, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// sweepExpired drops expired rows from the in-memory session store so it
// does not grow without bound between restarts.
func sweepExpired(store *sessionstore.InMemorySessionStore) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		store.DeleteExpired(context.Background(), time.Now()) //nolint:errcheck
	}
}

// recordRedisStats samples connection pool stats for the Prometheus gauges.
func recordRedisStats(c *redis.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		c.RecordPoolStats()
	}
}
