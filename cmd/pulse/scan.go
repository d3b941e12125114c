package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newthinker/pulse/internal/core"
)

var (
	scanTimeout time.Duration
	scanJSON    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one market scan and print the candidate lists",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit the result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	result, err := a.scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printScanResult(result)
	return nil
}

func printScanResult(result *core.ScanResult) {
	fmt.Printf("Scan at %s, %d symbols examined\n\n",
		result.GeneratedAt.Format("2006-01-02 15:04:05"), result.Examined)

	printCandidates("Oversold (RSI < 30)", result.Oversold)
	fmt.Println()
	printCandidates("Overbought (RSI > 70)", result.Overbought)
}

func printCandidates(title string, list []core.ScanCandidate) {
	fmt.Println(title)
	if len(list) == 0 {
		fmt.Println("  (none)")
		return
	}
	fmt.Printf("  %-4s %-10s %10s %8s %14s\n", "#", "Symbol", "Price", "RSI", "Market Cap")
	for i, c := range list {
		fmt.Printf("  %-4d %-10s %10.2f %8.2f %14.0f\n",
			i+1, c.Symbol, c.Price, c.RSI, c.MarketCap)
	}
}
