package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"viveLasoAPasoAPI/internal/app"
	"viveLasoAPasoAPI/internal/config"
	"viveLasoAPasoAPI/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(cfg *config.Config, newErr error) (*Context, *bytes.Buffer, *int) {
	out := &bytes.Buffer{}
	calls := 0
	ctx := &Context{
		Config: cfg,
		Out:    out,
		newFn: func(context.Context, *config.Config) (*app.App, error) {
			calls++
			return nil, newErr
		},
	}
	return ctx, out, &calls
}

func TestTokenCmd(t *testing.T) {
	cfg := &config.Config{AuthMode: config.AuthModeDev, DevJWTSecret: "local-secret"}
	ctx, out, calls := newTestContext(cfg, nil)

	require.NoError(t, (&TokenCmd{UID: "dev-1", Email: "dev@example.com", TTL: time.Hour}).Run(ctx))
	assert.Zero(t, *calls, "token issuing needs no backing store")

	claims, err := middleware.NewDevVerifier("local-secret").Verify(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "dev-1", claims.UID)
	assert.Equal(t, "dev@example.com", claims.Email)
}

func TestTokenCmdRequiresDevMode(t *testing.T) {
	ctx, _, _ := newTestContext(&config.Config{AuthMode: config.AuthModeFirebase}, nil)
	assert.Error(t, (&TokenCmd{UID: "x", TTL: time.Hour}).Run(ctx))
}

func TestAppBuiltOnce(t *testing.T) {
	boom := errors.New("no credentials")
	ctx, _, calls := newTestContext(&config.Config{}, boom)

	_, err := ctx.App(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = ctx.App(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, *calls)
}

func TestDoctorReportsStartupFailure(t *testing.T) {
	ctx, out, _ := newTestContext(&config.Config{}, errors.New("firestore unreachable"))

	err := (&DoctorCmd{}).Run(ctx)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "firestore unreachable")
}

func TestStatsCmdRejectsBadZone(t *testing.T) {
	ctx, _, calls := newTestContext(&config.Config{}, nil)
	assert.Error(t, (&StatsCmd{User: "u", TZ: "Moon/Base"}).Run(ctx))
	assert.Zero(t, *calls)
}

func TestLoadLocation(t *testing.T) {
	loc, err := loadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = loadLocation("America/Mexico_City")
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}
