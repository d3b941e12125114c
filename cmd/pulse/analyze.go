package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/indicator"
)

var (
	analyzeDays int
	analyzeTail int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Compute the full indicator snapshot for one symbol",
	Long:  "Fetch daily history for a symbol and print SMA, RSI, MACD and KDJ rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 365, "history window in days")
	analyzeCmd.Flags().IntVar(&analyzeTail, "tail", 10, "number of trailing rows to print")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(args[0])

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	end := time.Now()
	start := end.AddDate(0, 0, -analyzeDays)

	series, err := a.history.FetchHistory(ctx, symbol, start, end, "1d")
	if err != nil {
		return fmt.Errorf("fetching history for %s: %w", symbol, err)
	}

	snapshots, err := indicator.Compute(series)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientHistory) {
			return fmt.Errorf("%s has %d bars, need at least %d", symbol, len(series), indicator.MinBars)
		}
		return fmt.Errorf("computing indicators for %s: %w", symbol, err)
	}

	tail := analyzeTail
	if tail > len(snapshots) {
		tail = len(snapshots)
	}

	fmt.Printf("%s, %d bars (%s to %s)\n\n", symbol, len(series),
		series[0].Time.Format("2006-01-02"),
		series[len(series)-1].Time.Format("2006-01-02"))

	fmt.Printf("%-12s %9s %9s %9s %7s %8s %8s %7s %7s %7s\n",
		"Date", "Close", "SMA50", "SMA200", "RSI14", "MACD", "Signal", "K", "D", "J")
	for _, snap := range snapshots[len(snapshots)-tail:] {
		fmt.Printf("%-12s %9.2f %9s %9s %7s %8s %8s %7s %7s %7s\n",
			snap.Time.Format("2006-01-02"),
			snap.Close,
			fmtValue(snap.SMA50, 2),
			fmtValue(snap.SMA200, 2),
			fmtValue(snap.RSI14, 1),
			fmtValue(snap.MACD, 3),
			fmtValue(snap.MACDSignal, 3),
			fmtValue(snap.K, 1),
			fmtValue(snap.D, 1),
			fmtValue(snap.J, 1),
		)
	}
	return nil
}

// fmtValue renders an indicator value, or a dash for warm-up rows.
func fmtValue(v indicator.Value, prec int) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, v.Float64)
}
