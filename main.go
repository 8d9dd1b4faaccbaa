package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"viveLasoAPasoAPI/handlers"
	"viveLasoAPasoAPI/internal/app"
	"viveLasoAPasoAPI/internal/config"
	"viveLasoAPasoAPI/internal/logger"
	"viveLasoAPasoAPI/internal/notification"
	"viveLasoAPasoAPI/middleware"
	"viveLasoAPasoAPI/services"

	_ "net/http/pprof"
)

var (
	cfg       *config.Config
	deps      *app.App
	verifier  middleware.TokenVerifier
	reminders *services.ReminderDispatcher
	appCtx    context.Context
	appCancel context.CancelFunc
	zapLogger *zap.Logger
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	zapLogger, err = logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		File:       cfg.LogFile,
	})
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())

	deps, err = app.New(appCtx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize application", zap.Error(err))
	}
	zap.L().Info("Connected to Firestore and local store",
		zap.String("project", cfg.FirebaseProjectID),
		zap.String("local_driver", cfg.LocalStoreDriver))

	switch cfg.AuthMode {
	case config.AuthModeDev:
		verifier = middleware.NewDevVerifier(cfg.DevJWTSecret)
		zap.L().Warn("AUTH_MODE=dev: accepting locally signed HS256 tokens")
	default:
		authClient, err := deps.Firebase.Auth(appCtx)
		if err != nil {
			zap.L().Fatal("Failed to initialize Firebase Auth", zap.Error(err))
		}
		verifier = middleware.NewFirebaseVerifier(authClient)
	}

	if cfg.RemindersEnabled {
		fcmService, err := notification.NewFCMService(appCtx, deps.Firebase)
		if err != nil {
			zap.L().Warn("Could not initialize FCM, reminders disabled", zap.Error(err))
		} else {
			reminders = services.NewReminderDispatcher(deps.UserStore, deps.Habits, fcmService, services.ReminderConfig{
				Hour:     cfg.ReminderHour,
				Interval: cfg.ReminderInterval,
			})
			zap.L().Info("FCM reminder dispatcher initialized", zap.Int("hour", cfg.ReminderHour))
		}
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		zap.L().Info("Closing stores...")
		deps.Close()
		_ = zapLogger.Sync()
	}()

	userHandler := handlers.NewUserHandler(deps.Users)
	habitHandler := handlers.NewHabitHandler(deps.Habits, deps.Users)
	statsHandler := handlers.NewStatsHandler(deps.Stats, deps.Users)
	insightsHandler := handlers.NewInsightsHandler(deps.Insights, deps.Users)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard)

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recovery)

	standardRouter := r.PathPrefix("/").Subrouter()

	limiter, err := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxyList())
	if err != nil {
		zap.L().Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	go limiter.CleanupVisitors(appCtx)

	standardRouter.Use(limiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := deps.Local.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status": "unhealthy", "error": "local store unreachable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy", "service": "vivelaso-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(verifier))

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/devices", userHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/habits", habitHandler.CreateRecord).Methods("POST")
	protected.HandleFunc("/habits", habitHandler.ListRecords).Methods("GET")
	protected.HandleFunc("/habits/sync", habitHandler.SyncPending).Methods("POST")
	protected.HandleFunc("/habits/{id}", habitHandler.GetRecord).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.UpdateRecord).Methods("PUT")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteRecord).Methods("DELETE")

	protected.HandleFunc("/stats/weekly", statsHandler.Weekly).Methods("GET")
	protected.HandleFunc("/stats/daily", statsHandler.Daily).Methods("GET")
	protected.HandleFunc("/stats/today", statsHandler.Today).Methods("GET")

	protected.HandleFunc("/insights/weather", insightsHandler.Weather).Methods("GET")
	protected.HandleFunc("/insights/nutrition", insightsHandler.Nutrition).Methods("GET")
	protected.HandleFunc("/insights/recommendation", insightsHandler.Recommendation).Methods("GET")

	protected.HandleFunc("/dashboard", dashboardHandler.GetDashboard).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Timezone", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	port := ":" + cfg.Port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if reminders != nil {
		reminders.Start(appCtx)
	}

	go func() {
		zap.L().Info("Starting server", zap.String("addr", port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Error starting server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	zap.L().Info("Got signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server shutdown error", zap.Error(err))
	}

	appCancel()
	if reminders != nil {
		reminders.Stop()
	}

	zap.L().Info("Server shutdown complete")
}
