package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/pulse/internal/metrics"
	"github.com/newthinker/pulse/internal/scanner"
	"github.com/newthinker/pulse/internal/scheduler"
)

var watchRunOnStart bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled scans and expose metrics",
	Long:  "Run market scans on the configured cron schedule until interrupted",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRunOnStart, "run-on-start", true, "run one scan immediately on startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	reg := metrics.NewRegistry()
	a.scanner.SetMetrics(reg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cache := scanner.NewResultCache(a.cfg.Cache.TTL)
	cacheKey := scanner.CacheKey(a.universeSymbols(), scanConfigFrom(a.cfg))

	sched := scheduler.New(a.scanner, cache, a.log)
	sched.SetMetrics(reg)

	spec := a.cfg.Schedule.Cron
	if a.cfg.Schedule.Enabled {
		if err := sched.Register(ctx, spec, cacheKey); err != nil {
			return err
		}
	}

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux}

		go func() {
			a.log.Info("metrics listener started",
				zap.String("addr", a.cfg.Metrics.Listen),
				zap.String("path", a.cfg.Metrics.Path),
			)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.log.Error("metrics listener error", zap.Error(err))
			}
		}()
	}

	if watchRunOnStart {
		if result, err := sched.RunNow(ctx, cacheKey); err != nil {
			a.log.Error("initial scan failed", zap.Error(err))
		} else {
			printScanResult(result)
		}
	}

	if a.cfg.Schedule.Enabled {
		sched.Start()
		a.log.Info("watching", zap.String("cron", spec))
	} else {
		a.log.Warn("schedule disabled, serving the initial scan and metrics only")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.log.Info("shutting down")
	cancel()
	sched.Stop()

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics listener shutdown: %w", err)
		}
	}
	return nil
}
