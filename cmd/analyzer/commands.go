package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"NepseAnalyzer/internal/analysis"
	"NepseAnalyzer/internal/calculator"
	"NepseAnalyzer/internal/collector"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/store"
)

func analyzeCmd() *cobra.Command {
	var (
		interval string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Print the latest indicator values and recommendation for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := analysis.ParseInterval(interval)
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			symbol := store.NormalizeSymbol(args[0])
			lv, err := a.svc.Latest(cmd.Context(), symbol, iv)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(lv)
			}
			printSnapshot(symbol, lv)
			return nil
		},
	}
	cmd.Flags().StringVarP(&interval, "interval", "i", "daily", "Bar interval: daily or weekly")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func opt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func printSnapshot(symbol string, lv *model.LatestValues) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Symbol\t%s\n", symbol)
	if lv.Price != nil {
		fmt.Fprintf(w, "Date\t%s\n", lv.Price.Date.Format("2006-01-02"))
		fmt.Fprintf(w, "Close\t%.2f\n", lv.Price.Close)
	}
	fmt.Fprintf(w, "SMA 20/50/200\t%s\t%s\t%s\n", opt(lv.SMA.SMA20), opt(lv.SMA.SMA50), opt(lv.SMA.SMA200))
	fmt.Fprintf(w, "EMA 9/21\t%s\t%s\n", opt(lv.EMA.EMA9), opt(lv.EMA.EMA21))
	rsiLabel := ""
	if lv.RSI != nil {
		rsiLabel = calculator.Interpret("rsi", *lv.RSI)
	}
	fmt.Fprintf(w, "RSI 14\t%s\t%s\n", opt(lv.RSI), rsiLabel)
	fmt.Fprintf(w, "MACD line/signal/hist\t%s\t%s\t%s\n", opt(lv.MACD.Line), opt(lv.MACD.Signal), opt(lv.MACD.Histogram))
	fmt.Fprintf(w, "Bollinger upper/mid/lower\t%s\t%s\t%s\n", opt(lv.BollingerBands.Upper), opt(lv.BollingerBands.Middle), opt(lv.BollingerBands.Lower))
	fmt.Fprintf(w, "ATR 14\t%s\n", opt(lv.ATR))
	stochLabel := ""
	if lv.Stochastic.K != nil {
		stochLabel = calculator.Interpret("stochastic", *lv.Stochastic.K)
	}
	fmt.Fprintf(w, "Stochastic %%K/%%D\t%s\t%s\t%s\n", opt(lv.Stochastic.K), opt(lv.Stochastic.D), stochLabel)
	fmt.Fprintf(w, "Recommendation\t%s\t(score %d)\n", lv.Signals.Recommendation, lv.Signals.Score)
}

func refreshCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "refresh [SYMBOL...]",
		Short: "Fetch price history into the local store",
		Long:  "Fetch price history for the given symbols, the configured watchlist, or with --all every listed stock.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			symbols := args
			if len(symbols) == 0 && !all {
				symbols = a.cfg.Watchlist
			}
			if len(symbols) == 0 && !all {
				return fmt.Errorf("no symbols given and the watchlist is empty (use --all for every listed stock)")
			}
			res, err := a.svc.Refresh(cmd.Context(), symbols, func(p collector.Progress) {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", p.Percent, p.Message)
			})
			if err != nil {
				return err
			}
			for sym, ferr := range res.Failed {
				fmt.Fprintf(os.Stderr, "failed %s: %v\n", sym, ferr)
			}
			fmt.Printf("updated %d price histories, %d failed\n", res.PricesUpdated, len(res.Failed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Refresh the listing and every listed stock")
	return cmd
}

func stocksCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "stocks",
		Short: "List stored stocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if refresh {
				if _, err := a.svc.Collector.RefreshStocks(ctx); err != nil {
					return err
				}
			}
			stocks, err := a.svc.Stocks(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "SYMBOL\tCOMPANY\tSECTOR")
			for _, st := range stocks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", st.Symbol, st.CompanyName, st.Sector)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refetch the listing before printing")
	return cmd
}

func clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored prices, stocks and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if err := a.store.Clear(ctx); err != nil {
				return err
			}
			return a.cache.DeletePrefix(ctx, "")
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
