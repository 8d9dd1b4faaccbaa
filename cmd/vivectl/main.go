package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"viveLasoAPasoAPI/internal/cli"
	"viveLasoAPasoAPI/internal/config"
	"viveLasoAPasoAPI/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	LogLevel string `help:"Log level." default:"warn"`

	Stats  cli.StatsCmd  `cmd:"" help:"Print a user's weekly summary."`
	Sync   cli.SyncCmd   `cmd:"" help:"Push records still pending in the local store."`
	Tip    cli.TipCmd    `cmd:"" help:"Show the weather tip for a city."`
	Token  cli.TokenCmd  `cmd:"" help:"Issue a development auth token."`
	Remind cli.RemindCmd `cmd:"" help:"Send due push reminders once."`
	Doctor cli.DoctorCmd `cmd:"" help:"Check configuration and connectivity."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("vivectl"),
		kong.Description("Operator tool for the ViveLasoAPaso API"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := logger.Init(logger.Config{Level: CLI.LogLevel, File: cfg.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := cli.NewContext(cfg)
	err = kctx.Run(appCtx)
	appCtx.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
