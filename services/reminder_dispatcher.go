package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/metrics"
	"viveLasoAPasoAPI/internal/notification"
	"viveLasoAPasoAPI/internal/stats"
	"viveLasoAPasoAPI/internal/user"

	"go.uber.org/zap"
)

type ReminderConfig struct {
	Hour     int
	Interval time.Duration
	Workers  int
}

// ReminderDispatcher pushes an evening reminder to opted-in users who have
// not logged anything today. A scheduler goroutine feeds a fixed worker pool.
type ReminderDispatcher struct {
	users    UserRepository
	records  recordLister
	sender   PushSender
	hour     int
	interval time.Duration
	workers  int
	jobQueue chan *ReminderJob
	stopChan chan struct{}
	wg       sync.WaitGroup
	now      func() time.Time

	mu     sync.Mutex
	sentOn map[string]string
}

type ReminderJob struct {
	UserID string
	Day    string
	Push   notification.Push
}

var reminderText = map[string]map[notification.Type][2]string{
	user.LanguageSpanish: {
		notification.TypeDailyReminder: {"¿Cómo va tu día?", "Aún no registras ningún hábito hoy. Un pasito a la vez."},
		notification.TypeStreakRisk:    {"¡No pierdas tu racha!", "Llevas %d días seguidos. Registra un hábito hoy para mantenerla."},
	},
	user.LanguageEnglish: {
		notification.TypeDailyReminder: {"How is your day going?", "You haven't logged a habit today. One small step at a time."},
		notification.TypeStreakRisk:    {"Keep your streak alive!", "You're on a %d-day streak. Log a habit today to keep it going."},
	},
}

func NewReminderDispatcher(users UserRepository, records recordLister, sender PushSender, cfg ReminderConfig) *ReminderDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &ReminderDispatcher{
		users:    users,
		records:  records,
		sender:   sender,
		hour:     cfg.Hour,
		interval: cfg.Interval,
		workers:  cfg.Workers,
		jobQueue: make(chan *ReminderJob, 100),
		stopChan: make(chan struct{}),
		now:      time.Now,
		sentOn:   make(map[string]string),
	}
}

// Start launches the workers and the scheduler. Stop ends both.
func (d *ReminderDispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	d.wg.Add(1)
	go d.schedule(ctx)
}

func (d *ReminderDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

func (d *ReminderDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			d.drain()
			return
		}
	}
}

// drain sends whatever is still queued so Stop does not drop reminders.
func (d *ReminderDispatcher) drain() {
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		default:
			return
		}
	}
}

func (d *ReminderDispatcher) schedule(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := d.RunOnce(ctx); err != nil {
				zap.L().Warn("reminder run failed", zap.Error(err))
			} else if n > 0 {
				zap.L().Info("reminders queued", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		case <-d.stopChan:
			return
		}
	}
}

// RunOnce queues a reminder for every candidate whose local hour matches
// the configured hour and returns how many were queued.
func (d *ReminderDispatcher) RunOnce(ctx context.Context) (int, error) {
	candidates, err := d.users.ListReminderCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder candidates: %w", err)
	}

	queued := 0
	for i := range candidates {
		job, err := d.buildJob(ctx, &candidates[i])
		if err != nil {
			zap.L().Warn("skipping reminder", zap.String("user_id", candidates[i].ID), zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		if d.dispatch(job) {
			queued++
		}
	}
	return queued, nil
}

// buildJob returns nil when the user should not be reminded right now.
func (d *ReminderDispatcher) buildJob(ctx context.Context, u *user.User) (*ReminderJob, error) {
	if len(u.DeviceTokens) == 0 {
		return nil, nil
	}

	now := d.now().In(u.Location())
	if now.Hour() != d.hour {
		return nil, nil
	}
	day := now.Format("2006-01-02")
	if d.alreadySent(u.ID, day) {
		return nil, nil
	}

	// One extra day so the streak ending yesterday sees its full lookback.
	records, err := d.records.ListRecords(ctx, u.ID, habit.ListQuery{
		From: stats.StreakWindowStart(now).AddDate(0, 0, -1),
		To:   stats.EndOfDay(now),
	})
	if err != nil {
		return nil, err
	}
	if stats.Streak(records, now) > 0 {
		return nil, nil
	}

	typ := notification.TypeDailyReminder
	streak := stats.Streak(records, now.AddDate(0, 0, -1))
	if streak > 0 {
		typ = notification.TypeStreakRisk
	}

	texts, ok := reminderText[u.Language]
	if !ok {
		texts = reminderText[user.LanguageSpanish]
	}
	title, body := texts[typ][0], texts[typ][1]
	if typ == notification.TypeStreakRisk {
		body = fmt.Sprintf(body, streak)
	}

	return &ReminderJob{
		UserID: u.ID,
		Day:    day,
		Push: notification.Push{
			UserID: u.ID,
			Type:   typ,
			Tokens: u.DeviceTokens,
			Title:  title,
			Body:   body,
			Data:   map[string]string{"type": string(typ), "screen": "record"},
		},
	}, nil
}

func (d *ReminderDispatcher) dispatch(job *ReminderJob) bool {
	select {
	case d.jobQueue <- job:
		d.markSent(job.UserID, job.Day)
		return true
	case <-time.After(5 * time.Second):
		zap.L().Warn("reminder queue full", zap.String("user_id", job.UserID))
		return false
	}
}

func (d *ReminderDispatcher) processJob(job *ReminderJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := d.sender.Send(ctx, job.Push)
	if err != nil {
		metrics.RemindersSent.WithLabelValues(metrics.OutcomeError).Inc()
		zap.L().Warn("reminder push failed", zap.String("user_id", job.UserID), zap.Error(err))
	} else {
		metrics.RemindersSent.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	for _, token := range res.InvalidTokens {
		if err := d.users.RemoveDeviceToken(ctx, job.UserID, token); err != nil {
			zap.L().Warn("failed to drop invalid device token", zap.String("user_id", job.UserID), zap.Error(err))
		}
	}
}

func (d *ReminderDispatcher) alreadySent(userID, day string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sentOn[userID] == day
}

func (d *ReminderDispatcher) markSent(userID, day string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sentOn[userID] = day
}
