package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/larsks/airdancer/internal/cli"
	"github.com/larsks/airdancer/internal/device"
	"github.com/larsks/airdancer/internal/httpserver"
	"github.com/larsks/airdancer/internal/matcher"
	"github.com/larsks/airdancer/internal/patternengine"
	"github.com/larsks/airdancer/internal/settings"
	"github.com/larsks/airdancer/internal/sink"
	"github.com/larsks/airdancer/internal/status"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return &settings.Settings{} },
		&pedalMacroHandler{},
	)
}

// pedalMacroHandler implements cli.CommandHandler for the macro engine.
type pedalMacroHandler struct{}

func (h *pedalMacroHandler) Start(config cli.Configurable) error {
	cfg, ok := config.(*settings.Settings)
	if !ok {
		return fmt.Errorf("invalid config type for pedalmacro")
	}
	return run(cfg)
}

func run(cfg *settings.Settings) error {
	if cfg.PatternFile == "" {
		return fmt.Errorf("--pattern-file is required")
	}

	pcfg, err := patternengine.Parse(cfg.PatternFile)
	if err != nil {
		return fmt.Errorf("load pattern file: %w", err)
	}

	if cfg.Debug {
		fmt.Print(patternengine.FormatConfig(pcfg))
		return nil
	}

	log.Printf("loaded %d device(s), %d rule(s) from %s", len(pcfg.Devices), len(pcfg.Rules), cfg.PatternFile)

	registry := sink.NewRegistry()
	cmdSink, err := registry.Build(cfg.SinkBackend, map[string]string{
		"shell":  cfg.Shell,
		"broker": cfg.MQTTBroker,
		"topic":  cfg.MQTTTopic,
	})
	if err != nil {
		return fmt.Errorf("build command sink %q: %w", cfg.SinkBackend, err)
	}

	m := matcher.New(pcfg.Rules, cmdSink)
	if cfg.HistorySoftCap > 0 {
		m.SetSoftCap(cfg.HistorySoftCap)
	}

	mgr := device.New(pcfg.Devices)
	if err := mgr.Start(); err != nil {
		return fmt.Errorf("start device manager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statusErrCh := make(chan error, 1)
	if cfg.StatusListenAddress != "" {
		statusHandler := status.NewHandler(m)
		go func() {
			statusErrCh <- httpserver.Serve(ctx, cfg.StatusListenAddress, statusHandler)
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ingestDone := make(chan struct{})
	go func() {
		defer close(ingestDone)
		for ev := range mgr.Events() {
			m.Handle(ev)
		}
	}()

	select {
	case <-stop:
		log.Println("received shutdown signal")
	case err := <-statusErrCh:
		if err != nil {
			log.Printf("status server: %v", err)
		}
	}

	cancel()
	mgr.Stop()
	<-ingestDone

	return nil
}
