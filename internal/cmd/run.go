package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/joshemcr2/users-api/internal/cache"
	"github.com/joshemcr2/users-api/internal/cmd/config"
	"github.com/joshemcr2/users-api/internal/db"
	service "github.com/joshemcr2/users-api/internal/http"
	usersHTTP "github.com/joshemcr2/users-api/internal/users/http"
	"github.com/joshemcr2/users-api/internal/users/postgres"
	"github.com/joshemcr2/users-api/internal/users/repo"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const serviceName = "users-api"

func run(env string) func(cCtx *cli.Context) error {
	return func(cCtx *cli.Context) error {
		cfg, err := loadConfig(cCtx, env)
		if err != nil {
			return err
		}
		return serve(cfg)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := "info"
	if cfg.Debug {
		level = "debug"
	}

	return httplog.NewLogger(serviceName, httplog.Options{
		JSON:     !cfg.Debug,
		Concise:  true,
		LogLevel: level,
		Tags:     map[string]string{"env": cfg.Env},
	})
}

// NewRouter mounts the users service under both API prefixes.
func NewRouter(l zerolog.Logger, users http.Handler) http.Handler {
	mux := service.New(service.WithLogger(l))
	mux.Use(service.AccessLog(l))

	mux.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		mux.Respond(w, r, service.Message{Message: "pong"}, http.StatusOK)
	})

	mux.Mount("/api/users", users)
	mux.Mount("/api/v1/users", users)
	return mux
}

func serve(cfg *config.Config) error {
	l := newLogger(cfg)
	log.Logger = l

	sCtx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	c := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		ExposedHeaders:   []string{"Location", cache.HeaderStatus},
		Debug:            cfg.Debug,
	}

	opts := []usersHTTP.Option{usersHTTP.WithLogger(l)}

	r, closeStore, err := newRepo(sCtx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	opts = append(opts, usersHTTP.WithRepo(r))

	if cfg.Cache.Enable {
		rc, err := cache.Dial(sCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()

		opts = append(opts, usersHTTP.WithCache(cache.New(rc), cfg.Cache.TTL))
		l.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Cache.TTL).Msg("response cache enabled")
	}

	srv := http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: cors.New(c).Handler(NewRouter(l, usersHTTP.New(opts...))),
		// max time to read request from the client
		ReadTimeout: 10 * time.Second,
		// max time to write response to the client
		WriteTimeout: 10 * time.Second,
		// max time for connections using TCP Keep-Alive
		IdleTimeout: 120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context { return sCtx },
	}

	g, gCtx := errgroup.WithContext(sCtx)

	g.Go(func() error {
		l.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Kind).Msg("users-api server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		l.Info().Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	return g.Wait()
}

// newRepo opens the configured store. The returned func releases it.
func newRepo(ctx context.Context, cfg *config.Config) (repo.Repo, func(), error) {
	if cfg.Store.Kind == config.StoreMemory {
		return repo.New(), func() {}, nil
	}

	if err := db.Migrate(cfg.Store.DatabaseURL); err != nil {
		return nil, nil, err
	}

	pool, err := db.Open(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	return postgres.New(pool), pool.Close, nil
}
