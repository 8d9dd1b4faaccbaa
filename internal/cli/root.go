// Package cli implements the vivectl operator commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"viveLasoAPasoAPI/internal/app"
	"viveLasoAPasoAPI/internal/config"
)

// Context is passed to every command's Run method. The application is
// built on first use so commands that need no backing store stay offline.
type Context struct {
	Config *config.Config
	Out    io.Writer

	once  sync.Once
	app   *app.App
	err   error
	newFn func(context.Context, *config.Config) (*app.App, error)
}

func NewContext(cfg *config.Config) *Context {
	return &Context{Config: cfg, Out: os.Stdout, newFn: app.New}
}

func (c *Context) App(ctx context.Context) (*app.App, error) {
	c.once.Do(func() {
		c.app, c.err = c.newFn(ctx, c.Config)
	})
	return c.app, c.err
}

func (c *Context) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

func (c *Context) printJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return loc, nil
}
