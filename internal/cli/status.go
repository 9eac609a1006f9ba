package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rsimaster/internal/feed"
	"rsimaster/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Current oscillator, trend, session and gate state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	client := feed.NewClient(a.log)
	short, err := client.Klines(ctx, a.cfg.Symbol, a.cfg.OscInterval, a.cfg.OscLimit)
	if err != nil {
		return fmt.Errorf("fetch %s candles: %w", a.cfg.OscInterval, err)
	}
	long, err := client.Klines(ctx, a.cfg.Symbol, a.cfg.TrendInterval, a.cfg.TrendLimit)
	if err != nil {
		return fmt.Errorf("fetch %s candles: %w", a.cfg.TrendInterval, err)
	}
	refPrice, err := client.MarkPrice(ctx, a.cfg.Symbol)
	if err != nil {
		refPrice = 0 // last close stands in
	}

	now := time.Now().In(a.clock.Location())
	snap, err := a.indic.Compute(short, long, refPrice, now)
	if err != nil {
		return err
	}
	ev := a.detector.Evaluate(snap)
	tier, tierMsg := a.clock.Tier(now)

	fmt.Printf("%s @ %s\n\n", a.cfg.Symbol, now.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Price:       $%.2f\n", snap.RefPrice)
	fmt.Printf("Oscillator:  %.1f (%s), previous %.1f\n",
		snap.OscCurrent, a.detector.Zone(snap.OscCurrent), snap.OscPrevious)
	fmt.Printf("Trend:       $%.2f (%s)\n\n", snap.TrendValue, trendSide(snap.RefPrice, snap.TrendValue))

	fmt.Printf("Session:     %s — %s\n", tier, tierMsg)
	if tier != model.TierOptimal && tier != model.TierGood {
		if _, msg := a.clock.NextOptimal(now); msg != "" {
			fmt.Printf("Next window: %s\n", msg)
		}
	}
	fmt.Println()

	if ev.Direction != model.None {
		fmt.Printf("Signal:      %s (tradeable: %v)\n", ev.Direction, ev.CanTrade)
	} else {
		fmt.Println("Signal:      none")
	}
	for _, r := range ev.Reasons {
		fmt.Printf("  - %s\n", r)
	}
	for _, w := range ev.Warnings {
		fmt.Printf("  ! %s\n", w)
	}
	fmt.Println()

	day, err := a.journal.Day(ctx)
	if err != nil {
		return err
	}
	dec := a.gate.Check(day, now)
	if dec.Allowed {
		fmt.Println("Gates:       clear")
	} else {
		fmt.Printf("Gates:       blocked by %s — %s\n", dec.Gate, dec.Reason)
	}
	st := day.Stats
	fmt.Printf("Today:       %d trades (%dW/%dL), pnl %+.2f, streak %d, ignored %d\n",
		st.TotalTrades, st.Wins, st.Losses, st.TotalPnL, st.ConsecutiveLosses, st.SignalsIgnored)

	return nil
}

func trendSide(price, trend float64) string {
	switch {
	case price > trend:
		return "price above, bullish"
	case price < trend:
		return "price below, bearish"
	default:
		return "at trend"
	}
}
