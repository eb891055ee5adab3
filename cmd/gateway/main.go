package main

import (
	"os"

	"api-guard/config"
	"api-guard/logging"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type cli struct {
	config.Config `embed:""`

	Serve serveCmd `cmd:"" default:"1" help:"Run the gateway in front of UPSTREAM_URL."`
	Token tokenCmd `cmd:"" help:"Mint a bearer token for a subject (development)."`
}

func main() {
	// .env opcional; o ambiente real tem precedência.
	if err := config.LoadDotEnv(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("gateway"),
		kong.Description("Filter pipeline (injection screen, rate limit, bearer auth) in front of an HTTP API."),
		kong.UsageOnError(),
	)

	log := logging.New(c.LogLevel, c.LogFormat)
	defer func() { _ = log.Sync() }()

	err := kctx.Run(&c.Config, log)
	if err != nil {
		log.Error("gateway failed", zap.Error(err))
	}
	kctx.FatalIfErrorf(err)
}
