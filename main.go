package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kova98/redditscope.api/config"
	"github.com/kova98/redditscope.api/data"
	"github.com/kova98/redditscope.api/data/repos"
	"github.com/kova98/redditscope.api/enums"
	"github.com/kova98/redditscope.api/handlers"
	"github.com/kova98/redditscope.api/mentions"
	"github.com/kova98/redditscope.api/sentiment"
	"github.com/kova98/redditscope.api/sources"
)

var auth *handlers.AuthHandler

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	db, err := sqlx.Connect("postgres", config.Config.PostgresURL)
	if err != nil {
		slog.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := data.RunMigrations(db.DB); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sectionRepo := repos.NewSectionRepo(db)
	keywordRepo := repos.NewKeywordRepo(db)
	flagRepo := repos.NewFlagRepo(db)

	if config.Config.AuthEnabled() {
		keycloakClient := gocloak.NewClient(config.Config.KeycloakURL)
		auth = handlers.NewAuthHandler(keycloakClient)
		if err := auth.CheckClient(context.Background()); err != nil {
			slog.Error("keycloak client login failed", "error", err)
		}
	} else {
		slog.Warn("KEYCLOAK_URL not set, private routes are unauthenticated")
	}

	source, err := forumSource(config.Config)
	if err != nil {
		slog.Error("failed to create forum source", "error", err)
		os.Exit(1)
	}

	matchMode, err := enums.ParseMatchMode(config.Config.MatchMode)
	if err != nil {
		slog.Warn("invalid MATCH_MODE, using broad", "error", err)
		matchMode = enums.MatchModeBroad
	}

	fetcher := sources.NewFetcher(logger, source, sources.FetcherOptions{
		PageSize:       config.Config.PageSize,
		MaxPages:       config.Config.MaxPages,
		Concurrency:    config.Config.FetchConcurrency,
		MaxRetries:     config.Config.MaxRetries,
		InitialBackoff: config.Config.RetryInitialBackoff,
		MaxBackoff:     config.Config.RetryMaxBackoff,
		SectionTimeout: config.Config.SectionTimeout,
		MatchMode:      matchMode,
	})

	var gate sentiment.LanguageGate
	if config.Config.LanguageDetection {
		gate = sentiment.NewLinguaGate(config.Config.MinEnglishConfidence)
	}
	scorer := sentiment.NewScorer(logger, gate)

	service := mentions.NewService(logger, fetcher, scorer, flagRepo, clockwork.NewRealClock())

	mentionHandler := handlers.NewMentionHandler(logger, service, sectionRepo, keywordRepo, handlers.DefaultsFromConfig(config.Config))
	sections := handlers.NewSectionHandler(sectionRepo)
	keywords := handlers.NewKeywordHandler(keywordRepo)
	flags := handlers.NewFlagHandler(flagRepo)
	health := handlers.NewHealthHandler(db)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /recent-mentions", public(mentionHandler.GetRecentMentions))

	mux.HandleFunc("GET /sections", private(sections.GetSections))
	mux.HandleFunc("POST /sections", private(sections.CreateSection))
	mux.HandleFunc("DELETE /sections/{name}", private(sections.DeleteSection))

	mux.HandleFunc("GET /keywords", private(keywords.GetKeywords))
	mux.HandleFunc("POST /keywords", private(keywords.CreateKeyword))
	mux.HandleFunc("DELETE /keywords/{id}", private(keywords.DeleteKeyword))

	mux.HandleFunc("GET /flags", private(flags.GetFlags))
	mux.HandleFunc("PUT /flags/{postId}", private(flags.FlagPost))
	mux.HandleFunc("DELETE /flags/{postId}", private(flags.UnflagPost))

	mux.HandleFunc("GET /healthz", public(health.GetHealth))
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + config.Config.Port,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("Starting server", "port", config.Config.Port, "source", source.Name())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", "error", err)
	}

	if err := db.Close(); err != nil {
		slog.Error("failed to close database connection", "error", err)
	}
}

// forumSource builds the configured source, routed through the proxy pool
// when PROXY_URLS is set.
func forumSource(cfg config.AppConfig) (sources.Source, error) {
	var pool sources.ClientPool
	if len(cfg.ProxyURLs) > 0 {
		proxies, err := sources.NewProxyPool(cfg.ProxyURLs, cfg.RequestTimeout, cfg.ProxyMinInterval)
		if err != nil {
			return nil, err
		}
		if err := prometheus.Register(proxies.Collector()); err != nil {
			slog.Warn("failed to register proxy metrics", "error", err)
		}
		pool = proxies
	} else {
		client, err := sources.NewHTTPClient("", cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		pool = sources.NewDirectPool(client)
	}

	if cfg.ForumSource == config.SourceArcticShift {
		return sources.NewArcticShiftSource(pool, cfg.SourceBaseURL), nil
	}
	return sources.NewRedditSource(pool, cfg.SourceBaseURL), nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func private(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth == nil {
			public(handler)(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		result := auth.GetUser(r.Context(), authHeader)
		if result.Code != http.StatusOK {
			slog.Debug("unauthorized request", "path", r.URL.Path)
			writeResult(w, result)
			return
		}

		user := result.Body.(data.User)
		ctx := handlers.WithUser(r.Context(), user)

		public(handler)(w, r.WithContext(ctx))
	}
}

func public(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := time.Now()
		res := handler(w, r)
		elapsedMs := time.Since(ts).Milliseconds()
		slog.Debug("req", "method", r.Method, "path", r.URL.Path, "code", res.Code, "elapsed", elapsedMs)
		writeResult(w, res)
	}
}

func writeResult(w http.ResponseWriter, res handlers.Result) {
	w.Header().Set("Content-Type", "application/json")
	if res.Code == http.StatusInternalServerError && res.Body == nil {
		res.Body = handlers.ErrorResponse{Error: "Internal server error."}
	}
	w.WriteHeader(res.Code)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
	if res.Code == http.StatusInternalServerError && res.Error != nil {
		slog.Error("internal error", "error", res.Error.Error())
	}
}
