package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"viveLasoAPasoAPI/internal/config"
	"viveLasoAPasoAPI/internal/notification"
	"viveLasoAPasoAPI/middleware"
	"viveLasoAPasoAPI/services"
)

type StatsCmd struct {
	User  string `help:"Firebase uid." required:""`
	TZ    string `help:"IANA time zone for day boundaries." default:"UTC"`
	Daily int    `help:"Also print a daily breakdown for this many days." default:"0"`
}

func (cmd *StatsCmd) Run(ctx *Context) error {
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loc, err := loadLocation(cmd.TZ)
	if err != nil {
		return err
	}
	a, err := ctx.App(c)
	if err != nil {
		return err
	}

	summary, err := a.Stats.Weekly(c, cmd.User, loc)
	if err != nil {
		return err
	}
	if err := ctx.printJSON(summary); err != nil {
		return err
	}

	if cmd.Daily > 0 {
		now := time.Now().In(loc)
		days, err := a.Stats.Daily(c, cmd.User, now.AddDate(0, 0, -(cmd.Daily-1)), now, loc)
		if err != nil {
			return err
		}
		return ctx.printJSON(days)
	}
	return nil
}

type SyncCmd struct {
	User string `help:"Only sync this uid; all users when empty."`
}

func (cmd *SyncCmd) Run(ctx *Context) error {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := ctx.App(c)
	if err != nil {
		return err
	}

	users := []string{cmd.User}
	if cmd.User == "" {
		pending, err := a.Local.ListUnsynced(c, "")
		if err != nil {
			return err
		}
		seen := map[string]struct{}{}
		users = users[:0]
		for _, r := range pending {
			if _, ok := seen[r.UserID]; !ok {
				seen[r.UserID] = struct{}{}
				users = append(users, r.UserID)
			}
		}
		sort.Strings(users)
	}

	totalSynced, totalPending := 0, 0
	for _, uid := range users {
		res, err := a.Habits.SyncPending(c, uid)
		if err != nil {
			return fmt.Errorf("sync %s: %w", uid, err)
		}
		fmt.Fprintf(ctx.Out, "%s: synced %d, pending %d\n", uid, res.Synced, res.Pending)
		totalSynced += res.Synced
		totalPending += res.Pending
	}
	fmt.Fprintf(ctx.Out, "total: synced %d, pending %d across %d users\n", totalSynced, totalPending, len(users))
	return nil
}

type TipCmd struct {
	City string `arg:"" help:"City name, e.g. Madrid or Bogota,CO."`
	Lang string `help:"Tip language." enum:"es,en" default:"es"`
}

func (cmd *TipCmd) Run(ctx *Context) error {
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := ctx.App(c)
	if err != nil {
		return err
	}
	tip, err := a.Insights.WeatherTip(c, cmd.City, cmd.Lang)
	if err != nil {
		return err
	}
	return ctx.printJSON(tip)
}

type TokenCmd struct {
	UID   string        `help:"Subject of the token." required:""`
	Email string        `help:"Email claim."`
	Name  string        `help:"Name claim."`
	TTL   time.Duration `help:"Token lifetime." default:"24h"`
}

func (cmd *TokenCmd) Run(ctx *Context) error {
	if ctx.Config.AuthMode != config.AuthModeDev {
		return errors.New("tokens can only be issued when AUTH_MODE=dev")
	}
	token, err := middleware.SignDevToken(ctx.Config.DevJWTSecret, middleware.Claims{
		UID:   cmd.UID,
		Email: cmd.Email,
		Name:  cmd.Name,
	}, cmd.TTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, token)
	return nil
}

type RemindCmd struct {
	Hour int `help:"Local hour to match; defaults to REMINDER_HOUR." default:"-1"`
}

func (cmd *RemindCmd) Run(ctx *Context) error {
	c, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := ctx.App(c)
	if err != nil {
		return err
	}
	fcm, err := notification.NewFCMService(c, a.Firebase)
	if err != nil {
		return err
	}

	hour := cmd.Hour
	if hour < 0 {
		hour = ctx.Config.ReminderHour
	}
	d := services.NewReminderDispatcher(a.UserStore, a.Habits, fcm, services.ReminderConfig{Hour: hour, Interval: time.Hour})
	d.Start(c)
	n, err := d.RunOnce(c)
	d.Stop()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "queued %d reminders\n", n)
	return nil
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Fprintln(ctx.Out, "Running diagnostics...")

	a, err := ctx.App(c)
	if err != nil {
		fmt.Fprintf(ctx.Out, "❌ Startup: FAIL\n   Error: %v\n", err)
		return errors.New("diagnostics failed")
	}
	fmt.Fprintln(ctx.Out, "✓ Firebase and local store: OK")

	hasError := false
	if err := a.Local.Ping(c); err != nil {
		fmt.Fprintf(ctx.Out, "❌ Local store reachable: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Fprintln(ctx.Out, "✓ Local store reachable: OK")
	}

	pending, err := a.Local.ListUnsynced(c, "")
	if err != nil {
		fmt.Fprintf(ctx.Out, "❌ Pending records: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Fprintf(ctx.Out, "✓ Pending records: %d\n", len(pending))
	}

	cfg := a.Config
	for name, key := range map[string]string{
		"Weather API key":   cfg.WeatherAPIKey,
		"Nutrition API key": cfg.NutritionAPIKey,
		"Chat API key":      cfg.ChatAPIKey,
	} {
		if key == "" {
			fmt.Fprintf(ctx.Out, "⚠ %s: not set, placeholders will be served\n", name)
		}
	}

	if hasError {
		return errors.New("diagnostics failed")
	}
	return nil
}
