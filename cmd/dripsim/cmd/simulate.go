package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/quantfold/dripsim/market"
	"github.com/quantfold/dripsim/sim"
	"github.com/quantfold/dripsim/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a dividend reinvestment simulation",
	Long: `Simulate a lump-sum investment held over a date range, reinvesting
dividends net of tax as they accrue.

History comes from the local cache, refreshed from Yahoo Finance when stale.
Pass --prices-csv (and optionally --dividends-csv) to run fully offline from
dataset files instead; .xz and .zip compressed datasets are read directly.

Examples:
  dripsim simulate --ticker TSLY --start 2023-01-01 --end 2024-01-01 --initial 10000
  dripsim simulate --prices-csv prices.csv.xz --dividends-csv divs.csv \
      --start 2023-01-01 --end 2024-01-01 --initial 10000 --json`,
	RunE: runSimulate,
}

var (
	simTicker    string
	simStart     string
	simEnd       string
	simInitial   float64
	simMonthly   float64
	simReinvest  bool
	simForce     bool
	simJSON      bool
	simNoRecord  bool
	simPricesCSV string
	simDivsCSV   string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simTicker, "ticker", "t", "", "ticker symbol (required unless --prices-csv is given)")
	simulateCmd.Flags().StringVar(&simStart, "start", "", "start date YYYY-MM-DD (required)")
	simulateCmd.Flags().StringVar(&simEnd, "end", "", "end date YYYY-MM-DD (required)")
	simulateCmd.Flags().Float64Var(&simInitial, "initial", 10000, "initial investment")
	simulateCmd.Flags().Float64Var(&simMonthly, "monthly", 0, "monthly investment (recorded but not applied)")
	simulateCmd.Flags().BoolVar(&simReinvest, "reinvest", true, "reinvest dividends")
	simulateCmd.Flags().BoolVar(&simForce, "force", false, "refetch history even when the cache is fresh")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print the result as JSON")
	simulateCmd.Flags().BoolVar(&simNoRecord, "no-record", false, "do not persist the run")
	simulateCmd.Flags().StringVar(&simPricesCSV, "prices-csv", "", "price history CSV (offline mode)")
	simulateCmd.Flags().StringVar(&simDivsCSV, "dividends-csv", "", "dividend history CSV (offline mode)")
	simulateCmd.MarkFlagRequired("start")
	simulateCmd.MarkFlagRequired("end")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	start, err := market.ParseDate(simStart)
	if err != nil {
		return fmt.Errorf("parse start: %w", err)
	}
	end, err := market.ParseDate(simEnd)
	if err != nil {
		return fmt.Errorf("parse end: %w", err)
	}

	var (
		prices market.PriceSeries
		divs   market.DividendSeries
		db     *store.SQLite
	)

	if simPricesCSV != "" {
		prices, err = market.LoadPricesCSV(simPricesCSV)
		if err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
		if simDivsCSV != "" {
			divs, err = market.LoadDividendsCSV(simDivsCSV)
			if err != nil {
				return fmt.Errorf("load dividends: %w", err)
			}
		}
	} else {
		if simTicker == "" {
			return fmt.Errorf("--ticker is required unless --prices-csv is given")
		}

		db, err = store.NewSQLite(cfg.Data.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()

		svc := newService(cfg, db, log)
		prices, divs, err = svc.History(context.Background(), simTicker, start, end, simForce)
		if err != nil {
			return fmt.Errorf("history for %s: %w", simTicker, err)
		}
	}

	engine, err := sim.NewEngine(prices, divs, cfg.Simulation.SimConfig())
	if err != nil {
		return err
	}

	result, err := engine.Run(sim.Params{
		InitialInvestment: decimal.NewFromFloat(simInitial),
		MonthlyInvestment: decimal.NewFromFloat(simMonthly),
		Start:             start,
		End:               end,
		ReinvestDividends: simReinvest,
	})
	if err != nil {
		return err
	}

	if simJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(out))
	} else {
		result.Print(os.Stdout)
	}

	if db != nil && !simNoRecord {
		runID, err := db.RecordRun(simTicker, result)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Info().Str("run_id", runID).Str("ticker", simTicker).Msg("run recorded")
		if !simJSON {
			fmt.Printf("\nRun recorded: %s\n", runID)
		}
	}

	return nil
}
