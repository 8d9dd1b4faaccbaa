package services

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"viveLasoAPasoAPI/internal/clients/nutrition"
	"viveLasoAPasoAPI/internal/clients/weather"
	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/localstore"
	"viveLasoAPasoAPI/internal/notification"
	"viveLasoAPasoAPI/internal/user"

	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("unavailable")

var refNow = time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return refNow }

type fakeRemote struct {
	mu      sync.Mutex
	records map[string]habit.Record
	down    bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{records: make(map[string]habit.Record)}
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeRemote) Create(_ context.Context, rec *habit.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errUnavailable
	}
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeRemote) Update(ctx context.Context, rec *habit.Record) error {
	return f.Create(ctx, rec)
}

func (f *fakeRemote) Get(_ context.Context, id string) (*habit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errUnavailable
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, habit.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errUnavailable
	}
	if _, ok := f.records[id]; !ok {
		return habit.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRemote) Query(_ context.Context, userID string, q habit.ListQuery) ([]habit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errUnavailable
	}
	var out []habit.Record
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	out = filterRecords(out, q)
	sort.Slice(out, func(i, j int) bool { return out[i].RecordDate.After(out[j].RecordDate) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]user.User
	removed []string
	failGet bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]user.User)}
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errUnavailable
	}
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; ok {
		return errors.New("already exists")
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) AddDeviceToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	for _, t := range u.DeviceTokens {
		if t == token {
			return nil
		}
	}
	u.DeviceTokens = append(u.DeviceTokens, token)
	f.users[id] = u
	return nil
}

func (f *fakeUsers) RemoveDeviceToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, token)
	u := f.users[id]
	kept := u.DeviceTokens[:0]
	for _, t := range u.DeviceTokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.DeviceTokens = kept
	f.users[id] = u
	return nil
}

func (f *fakeUsers) ListReminderCandidates(_ context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for id, u := range f.users {
		if u.NotificationEnabled {
			u.ID = id
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeWeather struct {
	cur   *weather.Current
	err   error
	calls int
}

func (f *fakeWeather) Current(_ context.Context, _ string) (*weather.Current, error) {
	f.calls++
	return f.cur, f.err
}

type fakeNutrition struct {
	items []nutrition.Item
	err   error
	calls int
}

func (f *fakeNutrition) Lookup(_ context.Context, _ string) ([]nutrition.Item, error) {
	f.calls++
	return f.items, f.err
}

type fakeChat struct {
	reply      string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeChat) Complete(_ context.Context, system, prompt string) (string, error) {
	f.lastSystem, f.lastPrompt = system, prompt
	return f.reply, f.err
}

type fakeSender struct {
	mu      sync.Mutex
	pushes  []notification.Push
	invalid []string
	done    chan struct{}
}

func (f *fakeSender) Send(_ context.Context, p notification.Push) (notification.Result, error) {
	f.mu.Lock()
	f.pushes = append(f.pushes, p)
	f.mu.Unlock()
	if f.done != nil {
		defer func() { f.done <- struct{}{} }()
	}
	return notification.Result{Sent: len(p.Tokens) - len(f.invalid), InvalidTokens: f.invalid}, nil
}

// memCache is an in-process cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return b, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Close() error { return nil }

func newLocalStore(t *testing.T) localstore.Store {
	t.Helper()
	s := localstore.NewSQLiteStore(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newHabitService(t *testing.T) (*HabitService, *fakeRemote, localstore.Store) {
	t.Helper()
	remote := newFakeRemote()
	local := newLocalStore(t)
	svc := NewHabitService(remote, local)
	svc.now = fixedClock
	return svc, remote, local
}

func seed(t *testing.T, svc *HabitService, userID string, typ habit.Type, value float64, at time.Time) *habit.Record {
	t.Helper()
	rec, err := svc.CreateRecord(context.Background(), userID, &habit.CreateRecordRequest{
		HabitType:  string(typ),
		Value:      value,
		RecordDate: &at,
	})
	require.NoError(t, err)
	return rec
}
