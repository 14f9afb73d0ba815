package cmd

import (
	"context"
	"fmt"

	"github.com/quantfold/dripsim/market"
	"github.com/quantfold/dripsim/store"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and cache market history",
	Long: `Download daily price and dividend history for a ticker and cache it
in the local database. Subsequent simulations over the same range are served
from the cache.

Example:
  dripsim fetch --ticker TSLY --start 2023-01-01 --end 2024-01-01`,
	RunE: runFetch,
}

var (
	fetchTicker string
	fetchStart  string
	fetchEnd    string
	fetchForce  bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchTicker, "ticker", "t", "", "ticker symbol (required)")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "start date YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "end date YYYY-MM-DD, defaults to yesterday")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "refetch even when the cache is fresh")
	fetchCmd.MarkFlagRequired("ticker")
	fetchCmd.MarkFlagRequired("start")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	start, err := market.ParseDate(fetchStart)
	if err != nil {
		return fmt.Errorf("parse start: %w", err)
	}
	end := market.Today().AddDays(-1)
	if fetchEnd != "" {
		if end, err = market.ParseDate(fetchEnd); err != nil {
			return fmt.Errorf("parse end: %w", err)
		}
	}

	db, err := store.NewSQLite(cfg.Data.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	svc := newService(cfg, db, log)
	prices, divs, err := svc.History(context.Background(), fetchTicker, start, end, fetchForce)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", fetchTicker, err)
	}

	fmt.Printf("Cached %s: %d trading days, %d dividend events\n", fetchTicker, len(prices), len(divs))
	if len(prices) > 0 {
		fmt.Printf("  Range: %s .. %s\n", prices[0].Date, prices[len(prices)-1].Date)
	}
	return nil
}
