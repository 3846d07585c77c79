package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/langowen/satsconv/deploy/config"
	converterApp "github.com/langowen/satsconv/internal/converter/app"
	"github.com/langowen/satsconv/internal/converter/cli"
	"github.com/pkg/errors"
)

func main() {
	flags, args, err := cli.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error reading env", "error", err)
	}
	if flags.ProxyURL != "" {
		cfg.Client.ProxyURL = flags.ProxyURL
	}
	if flags.DBPath != "" {
		cfg.Client.DBPath = flags.DBPath
	}
	if flags.NoEvents {
		cfg.Client.SendEvents = false
	}

	converterApp.InitLogger(os.Stderr, flags.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := converterApp.New(ctx, cfg, nil)
	if err != nil {
		log.Fatalln("Failed to initialize converter", "error", err)
	}

	runErr := cli.New(app, os.Stdout, os.Stderr).WithLanguage(flags.Lang).Run(ctx, args, os.Stdin)

	if err := app.Close(); err != nil {
		log.Println("Failed to close local storage", "error", err)
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, cli.ErrUsage):
		os.Exit(2)
	default:
		os.Exit(1)
	}
}
