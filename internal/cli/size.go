package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rsimaster/internal/feed"
	"rsimaster/internal/model"
)

var sizeEntry float64

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Position sizing, levels and expectancy for an entry",
	Args:  cobra.NoArgs,
	RunE:  runSize,
}

func init() {
	rootCmd.AddCommand(sizeCmd)
	sizeCmd.Flags().Float64Var(&sizeEntry, "entry", 0, "entry price (default: current mark price)")
}

func runSize(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	entry := sizeEntry
	if entry == 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		client := feed.NewClient(a.log)
		entry, err = client.MarkPrice(ctx, a.cfg.Symbol)
		if err != nil {
			return fmt.Errorf("fetch mark price (use --entry to override): %w", err)
		}
	}

	sizing := a.sizer.Size()
	long := a.sizer.LevelsFor(entry, model.Long)
	short := a.sizer.LevelsFor(entry, model.Short)
	exp := a.sizer.ExpectedPnL(sizing.Size)

	fmt.Printf("Sizing for entry $%.2f\n\n", entry)
	fmt.Printf("Position:    $%.2f (max $%.2f at %gx)\n", sizing.Size, sizing.MaxSize, a.cfg.Leverage)
	fmt.Printf("Risk:        $%.2f (%g%% stop)\n\n", sizing.RiskAmount, a.cfg.StopLossPct)

	fmt.Printf("LONG:        stop $%.2f  target $%.2f\n", long.Stop, long.Target)
	fmt.Printf("SHORT:       stop $%.2f  target $%.2f\n\n", short.Stop, short.Target)

	fmt.Printf("Expectancy at %.1f%% win rate:\n", exp.WinRate)
	fmt.Printf("  net win    %+.2f (gross %.2f - fees %.2f)\n", exp.NetWin, exp.GrossWin, exp.Fees)
	fmt.Printf("  net loss   %+.2f (gross %.2f + fees %.2f)\n", -exp.NetLoss, exp.GrossLoss, exp.Fees)
	fmt.Printf("  r:r        %.2f\n", exp.RRRatio)
	fmt.Printf("  per trade  %+.2f\n", exp.PerTrade)
	return nil
}
