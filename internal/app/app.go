// Package app wires configuration into stores, clients and services. The
// API server and vivectl share it.
package app

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebaseSDK "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"viveLasoAPasoAPI/internal/cache"
	"viveLasoAPasoAPI/internal/clients/chat"
	"viveLasoAPasoAPI/internal/clients/nutrition"
	"viveLasoAPasoAPI/internal/clients/weather"
	"viveLasoAPasoAPI/internal/config"
	"viveLasoAPasoAPI/internal/firebase"
	"viveLasoAPasoAPI/internal/localstore"
	"viveLasoAPasoAPI/internal/remotestore"
	"viveLasoAPasoAPI/services"
)

type App struct {
	Config    *config.Config
	Firebase  *firebaseSDK.App
	Firestore *firestore.Client
	Local     localstore.Store
	Cache     cache.Cache
	UserStore *remotestore.UserStore

	Habits    *services.HabitService
	Users     *services.UserService
	Stats     *services.StatsService
	Insights  *services.InsightsService
	Dashboard *services.DashboardService
}

// New connects every backing store. Redis is optional: without REDIS_URL,
// or when it is unreachable, lookups are not cached.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	fbApp, err := firebase.NewApp(initCtx, firebase.Config{
		ProjectID:             cfg.FirebaseProjectID,
		CredentialsFile:       cfg.GoogleApplicationCredentials,
		CredentialsJSONBase64: cfg.FirebaseServiceAccountJSONBase64,
	})
	if err != nil {
		return nil, err
	}

	fs, err := fbApp.Firestore(initCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	dsn := cfg.SQLitePath
	if cfg.LocalStoreDriver == config.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	local, err := localstore.Open(initCtx, cfg.LocalStoreDriver, dsn)
	if err != nil {
		_ = fs.Close()
		return nil, err
	}

	var c cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(initCtx, cfg.RedisURL, "vivelaso:")
		if err != nil {
			zap.L().Warn("redis unavailable, lookups will not be cached", zap.Error(err))
		} else {
			c = rc
		}
	}

	a := &App{
		Config:    cfg,
		Firebase:  fbApp,
		Firestore: fs,
		Local:     local,
		Cache:     c,
		UserStore: remotestore.NewUserStore(fs),
	}

	a.Habits = services.NewHabitService(remotestore.NewHabitStore(fs), local)
	a.Users = services.NewUserService(a.UserStore)
	a.Stats = services.NewStatsService(a.Habits)
	a.Insights = services.NewInsightsService(
		weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.ExternalTimeout),
		nutrition.NewClient(cfg.NutritionBaseURL, cfg.NutritionAPIKey, cfg.ExternalTimeout),
		chat.NewClient(chat.Config{
			APIKey:  cfg.ChatAPIKey,
			BaseURL: cfg.ChatBaseURL,
			Model:   cfg.ChatModel,
			Timeout: cfg.ExternalTimeout,
		}),
		c,
		a.Stats,
	)
	a.Dashboard = services.NewDashboardService(a.Users, a.Stats, a.Insights)

	return a, nil
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		zap.L().Warn("failed to close cache", zap.Error(err))
	}
	if err := a.Local.Close(); err != nil {
		zap.L().Warn("failed to close local store", zap.Error(err))
	}
	if err := a.Firestore.Close(); err != nil {
		zap.L().Warn("failed to close firestore client", zap.Error(err))
	}
}
