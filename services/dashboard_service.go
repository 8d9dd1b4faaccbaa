package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"viveLasoAPasoAPI/internal/clients/weather"
	"viveLasoAPasoAPI/internal/stats"
	"viveLasoAPasoAPI/internal/user"

	"go.uber.org/zap"
)

// Dashboard is the home screen. Sections that failed are named in
// Unavailable; a failed weather lookup still carries the placeholder tip.
type Dashboard struct {
	Profile     *user.User     `json:"profile,omitempty"`
	Today       *TodayProgress `json:"today,omitempty"`
	Weekly      *stats.Summary `json:"weekly,omitempty"`
	Weather     *WeatherTip    `json:"weather,omitempty"`
	Unavailable []string       `json:"unavailable,omitempty"`
}

type DashboardService struct {
	users    *UserService
	stats    *StatsService
	insights *InsightsService
}

func NewDashboardService(users *UserService, st *StatsService, insights *InsightsService) *DashboardService {
	return &DashboardService{users: users, stats: st, insights: insights}
}

// Build assembles every section. The profile, records and weather load
// concurrently; goals, zone and language are applied once the profile is
// known. city may be empty and a nil loc means the profile's time zone.
func (s *DashboardService) Build(ctx context.Context, identity *user.CreateUserRequest, city string, loc *time.Location) *Dashboard {
	city = strings.TrimSpace(city)

	var (
		wg         sync.WaitGroup
		profile    *user.User
		profileErr error
		window     recordWindow
		statsErr   error
		cur        *weather.Current
		weatherErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = s.users.GetOrCreate(ctx, identity)
	}()
	go func() {
		defer wg.Done()
		window, statsErr = s.stats.loadAnyZone(ctx, identity.ID)
	}()
	if city != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cur, weatherErr = s.insights.currentWeather(ctx, city)
		}()
	}
	wg.Wait()

	d := &Dashboard{}

	if profileErr != nil {
		zap.L().Warn("dashboard profile unavailable", zap.String("user_id", identity.ID), zap.Error(profileErr))
		d.Unavailable = append(d.Unavailable, "profile")
	}
	d.Profile = profile
	settings := settingsOf(profile)
	if loc != nil {
		settings.Location = loc
	}

	if statsErr != nil {
		zap.L().Warn("dashboard stats unavailable", zap.String("user_id", identity.ID), zap.Error(statsErr))
		d.Unavailable = append(d.Unavailable, "stats")
	} else {
		ov := overviewOf(window.records, settings.Goals, window.now.In(settings.Location))
		d.Today = &ov.Today
		d.Weekly = &ov.Weekly
	}

	if city != "" {
		d.Weather = weatherTip(city, cur, weatherErr, settings.Language)
		if !d.Weather.Available {
			d.Unavailable = append(d.Unavailable, "weather")
		}
	}
	return d
}
