package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"viveLasoAPasoAPI/internal/cache"
	"viveLasoAPasoAPI/internal/clients/chat"
	"viveLasoAPasoAPI/internal/clients/nutrition"
	"viveLasoAPasoAPI/internal/clients/weather"
	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/metrics"
	"viveLasoAPasoAPI/internal/stats"
	"viveLasoAPasoAPI/internal/user"

	"go.uber.org/zap"
)

const (
	weatherCacheTTL   = 10 * time.Minute
	nutritionCacheTTL = 24 * time.Hour

	apiWeather   = "weather"
	apiNutrition = "nutrition"
	apiChat      = "chat"
)

var recommendationPlaceholder = map[string]string{
	user.LanguageSpanish: "Recomendación no disponible por ahora. Sigue registrando tus hábitos y vuelve a intentarlo más tarde.",
	user.LanguageEnglish: "Recommendation unavailable right now. Keep logging your habits and try again later.",
}

var coachPrompt = map[string]string{
	user.LanguageSpanish: "Eres un coach de bienestar amable. Responde en español con una recomendación breve (máximo tres frases) basada en los datos del usuario.",
	user.LanguageEnglish: "You are a friendly wellness coach. Reply in English with one short recommendation (three sentences at most) based on the user's data.",
}

type WeatherTip struct {
	City      string           `json:"city"`
	Weather   *weather.Current `json:"weather,omitempty"`
	Tip       string           `json:"tip"`
	Available bool             `json:"available"`
}

type Recommendation struct {
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

// InsightsService turns third-party API answers into screen content. API
// failures never surface as errors: they become placeholder text or empty
// lists.
type InsightsService struct {
	weather   WeatherClient
	nutrition NutritionClient
	chat      ChatClient
	cache     cache.Cache
	stats     *StatsService
}

func NewInsightsService(w WeatherClient, n NutritionClient, c ChatClient, cc cache.Cache, st *StatsService) *InsightsService {
	if cc == nil {
		cc = cache.Noop{}
	}
	return &InsightsService{weather: w, nutrition: n, chat: c, cache: cc, stats: st}
}

func (s *InsightsService) WeatherTip(ctx context.Context, city, lang string) (*WeatherTip, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", habit.ErrValidation)
	}

	cur, err := s.currentWeather(ctx, city)
	return weatherTip(city, cur, err, lang), nil
}

// weatherTip falls back to the placeholder tip when the lookup failed.
func weatherTip(city string, cur *weather.Current, err error, lang string) *WeatherTip {
	if err != nil {
		zap.L().Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
		return &WeatherTip{City: city, Tip: weather.UnavailableTip(lang)}
	}
	return &WeatherTip{
		City:      cur.City,
		Weather:   cur,
		Tip:       weather.Tip(cur, lang),
		Available: true,
	}
}

func (s *InsightsService) currentWeather(ctx context.Context, city string) (*weather.Current, error) {
	key := "weather:" + strings.ToLower(city)

	var cur weather.Current
	if err := cache.GetJSON(ctx, s.cache, key, &cur); err == nil {
		metrics.ExternalAPIRequests.WithLabelValues(apiWeather, metrics.OutcomeCached).Inc()
		return &cur, nil
	}

	fresh, err := s.weather.Current(ctx, city)
	if err != nil {
		metrics.ExternalAPIRequests.WithLabelValues(apiWeather, outcomeOf(err)).Inc()
		return nil, err
	}
	metrics.ExternalAPIRequests.WithLabelValues(apiWeather, metrics.OutcomeSuccess).Inc()

	if err := cache.SetJSON(ctx, s.cache, key, fresh, weatherCacheTTL); err != nil {
		zap.L().Debug("weather cache write failed", zap.Error(err))
	}
	return fresh, nil
}

// Nutrition returns an empty list when the API is down or knows no match.
func (s *InsightsService) Nutrition(ctx context.Context, query string) ([]nutrition.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", habit.ErrValidation)
	}

	key := "nutrition:" + strings.ToLower(query)
	var items []nutrition.Item
	if err := cache.GetJSON(ctx, s.cache, key, &items); err == nil {
		metrics.ExternalAPIRequests.WithLabelValues(apiNutrition, metrics.OutcomeCached).Inc()
		return items, nil
	}

	items, err := s.nutrition.Lookup(ctx, query)
	if err != nil {
		metrics.ExternalAPIRequests.WithLabelValues(apiNutrition, outcomeOf(err)).Inc()
		zap.L().Warn("nutrition lookup failed", zap.String("query", query), zap.Error(err))
		return []nutrition.Item{}, nil
	}
	metrics.ExternalAPIRequests.WithLabelValues(apiNutrition, metrics.OutcomeSuccess).Inc()

	if err := cache.SetJSON(ctx, s.cache, key, items, nutritionCacheTTL); err != nil {
		zap.L().Debug("nutrition cache write failed", zap.Error(err))
	}
	return items, nil
}

// Recommendation asks the chat model for advice based on the weekly summary.
// It is never cached.
func (s *InsightsService) Recommendation(ctx context.Context, userID string, settings Settings) (*Recommendation, error) {
	ov, err := s.stats.Overview(ctx, userID, settings.Goals, settings.Location)
	if err != nil {
		return nil, err
	}

	system, ok := coachPrompt[settings.Language]
	if !ok {
		system = coachPrompt[user.LanguageSpanish]
	}

	text, err := s.chat.Complete(ctx, system, BuildCoachPrompt(ov.Weekly, settings.Goals))
	if err != nil {
		metrics.ExternalAPIRequests.WithLabelValues(apiChat, outcomeOf(err)).Inc()
		zap.L().Warn("recommendation failed", zap.String("user_id", userID), zap.Error(err))
		return &Recommendation{Text: placeholderFor(settings.Language)}, nil
	}
	metrics.ExternalAPIRequests.WithLabelValues(apiChat, metrics.OutcomeSuccess).Inc()

	return &Recommendation{Text: text, Available: true}, nil
}

// BuildCoachPrompt renders the weekly summary as plain text for the model.
func BuildCoachPrompt(summary stats.Summary, goals user.DailyGoals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly summary from %s to %s.\n",
		summary.From.Format("2006-01-02"), summary.To.Format("2006-01-02"))
	for _, t := range habit.AllTypes {
		fmt.Fprintf(&b, "- %s: average %.1f %s per record, total %.1f\n",
			t, summary.Averages[t], t.DefaultUnit(), summary.Totals[t])
	}
	fmt.Fprintf(&b, "Total steps: %.0f. Active days: %d of %d. Current streak: %d days.\n",
		summary.TotalSteps, summary.ActiveDays, len(summary.Days), summary.Streak)
	fmt.Fprintf(&b, "Daily goals: water %.0f ml, sleep %.1f h, steps %.0f, exercise %.0f min, calories %.0f kcal.",
		goals.Water, goals.Sleep, goals.Steps, goals.Exercise, goals.Calories)
	return b.String()
}

func placeholderFor(lang string) string {
	if p, ok := recommendationPlaceholder[lang]; ok {
		return p
	}
	return recommendationPlaceholder[user.LanguageSpanish]
}

func outcomeOf(err error) string {
	if errors.Is(err, weather.ErrNotConfigured) ||
		errors.Is(err, nutrition.ErrNotConfigured) ||
		errors.Is(err, chat.ErrNotConfigured) {
		return metrics.OutcomeSkipped
	}
	return metrics.OutcomeError
}
