package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dayblock/dayblock/internal/config"
	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/handlers"
	"github.com/dayblock/dayblock/internal/logger"
	"github.com/dayblock/dayblock/internal/middleware"
	"github.com/dayblock/dayblock/internal/notify"
	"github.com/dayblock/dayblock/internal/services/insight"
	"github.com/dayblock/dayblock/internal/store"
	"github.com/dayblock/dayblock/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "dayblock-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including insight API payloads")
	devFlag := flag.Bool("dev", false, "Use console log encoding for local development")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	var zapLogger *zap.Logger
	if *devFlag {
		zapLogger, err = logger.NewDevelopmentLogger(debugMode)
	} else {
		zapLogger, err = logger.NewProductionLogger(debugMode)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Int("refresh_interval_seconds", cfg.RefreshInterval),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.Init(context.Background(), telemetry.Config{
				ServiceName: serviceName,
				Endpoint:    cfg.OTELEndpoint,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	st, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("failed_to_open_store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			zapLogger.Warn("failed_to_close_store", zap.Error(err))
		}
	}()
	zapLogger.Info("store_opened", zap.String("driver", cfg.DatabaseDriver))

	eng := engine.New(
		store.NewBlockRepository(st),
		store.NewProgressRepository(st),
		store.NewSettingsRepository(st),
		notify.NewLogNotifier(zapLogger),
		zapLogger,
		engine.WithRefreshInterval(time.Duration(cfg.RefreshInterval)*time.Second),
		// The log notifier never refuses, so the permission gate is open
		// from the start on the server host.
		engine.WithPermissionGranted(true),
	)
	if err := eng.Start(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_start_engine", zap.Error(err))
	}
	zapLogger.Info("engine_started")

	var insightProvider insight.Provider
	if cfg.OpenAIKey != "" {
		insightProvider = insight.NewOpenAIProvider(
			cfg.OpenAIKey,
			cfg.InsightBaseURL,
			cfg.InsightModel,
			zapLogger,
			debugMode,
		)
		zapLogger.Info("insight_provider_configured", zap.String("model", cfg.InsightModel))
	} else {
		zapLogger.Info("insight_provider_not_configured_using_rules")
	}

	r := mux.NewRouter()

	// Middleware runs in registration order, outermost first.
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", handlers.NewHealthChecker(st).HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	handlers.NewBlockHandler(eng).RegisterRoutes(api.PathPrefix("/blocks").Subrouter())
	handlers.NewProgressHandler(eng).RegisterRoutes(api.PathPrefix("/progress").Subrouter())
	handlers.NewSettingsHandler(eng).RegisterRoutes(api.PathPrefix("/settings").Subrouter())
	api.HandleFunc("/insights/weekly", handlers.NewInsightHandler(eng, insightProvider, zapLogger).WeeklyInsight).Methods("GET")
	api.HandleFunc("/export", handlers.NewExportHandler(eng).Export).Methods("GET")
	api.HandleFunc("/state", handlers.NewStateHandler(eng).GetState).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(r)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	if err := eng.Shutdown(ctx); err != nil {
		zapLogger.Error("engine_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
