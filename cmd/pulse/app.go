package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/newthinker/pulse/internal/config"
	"github.com/newthinker/pulse/internal/logger"
	"github.com/newthinker/pulse/internal/provider"
	"github.com/newthinker/pulse/internal/provider/universe"
	"github.com/newthinker/pulse/internal/provider/yahoo"
	"github.com/newthinker/pulse/internal/scanner"
)

// app bundles the wired components every command starts from.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	history provider.History
	funds   provider.Fundamentals
	scanner *scanner.Scanner
}

// newApp loads configuration and wires the providers and scanner the way
// every subcommand needs them.
func newApp() (*app, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	log, err := logger.New(debug || cfg.Log.Development, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}

	yh := yahoo.New()
	if pc, ok := cfg.Providers["yahoo"]; ok {
		yh = yahoo.NewWithConfig(provider.Config{
			Enabled: pc.Enabled,
			APIKey:  pc.APIKey,
			Timeout: pc.Timeout,
		})
	}

	registry := provider.NewRegistry()
	registry.Register(yh)

	history, ok := registry.Get(yh.Name())
	if !ok {
		return nil, fmt.Errorf("history provider %q not registered", yh.Name())
	}

	var uni provider.Universe
	if len(cfg.Universe.Symbols) > 0 {
		uni = universe.NewStatic("config", cfg.Universe.Symbols)
	} else {
		uni = universe.NewDefault()
	}

	return &app{
		cfg:     cfg,
		log:     log,
		history: history,
		funds:   yh,
		scanner: scanner.New(history, yh, uni, scanConfigFrom(cfg), log),
	}, nil
}

// universeSymbols returns the configured scan universe for cache keying.
func (a *app) universeSymbols() []string {
	if len(a.cfg.Universe.Symbols) > 0 {
		return a.cfg.Universe.Symbols
	}
	return universe.Default
}

func scanConfigFrom(cfg *config.Config) scanner.Config {
	return scanner.Config{
		LookbackDays:    cfg.Scanner.LookbackDays,
		MinBars:         cfg.Scanner.MinBars,
		OversoldBelow:   cfg.Scanner.OversoldBelow,
		OverboughtAbove: cfg.Scanner.OverboughtAbove,
		MarketCapFloor:  cfg.Scanner.MarketCapFloor,
		MaxResults:      cfg.Scanner.MaxResults,
		FetchWorkers:    cfg.Scanner.FetchWorkers,
	}
}
