package main

import (
	"context"
	"errors"
	"fmt"
	goos "os"
	"time"

	"github.com/spf13/pflag"
	"github.com/webtools/peerlink/pkg/config"
	"github.com/webtools/peerlink/pkg/hub"
	"github.com/webtools/peerlink/pkg/logger"
	"github.com/webtools/peerlink/pkg/os"
)

var Version = "?"

const shutdownTimeout = 10 * time.Second

func main() {
	conf, path, err := config.NewConfig(goos.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(goos.Stderr, "config: %v\n", err)
		goos.Exit(2)
	}

	log := logger.Build(conf.Relay.Debug, conf.Relay.Console, "r")

	log.Info().Msgf("version %s", Version)
	if path != "" {
		log.Info().Msgf("config: %s", path)
	}
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	h, err := hub.New(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("relay init")
	}
	h.Start()

	ctx, stop := os.SignalContext(context.Background())
	defer stop()
	if path != "" {
		go func() {
			err := config.Watch(ctx, path, func(c config.Config) { _ = h.ReloadIce(c) }, log)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("config watch")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("stopping")

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := h.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("service shutdown errors")
	}
}
