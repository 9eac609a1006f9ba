package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rsimaster/internal/feed"
	"rsimaster/internal/model"
)

var openEntry float64

var openCmd = &cobra.Command{
	Use:   "open <long|short>",
	Short: "Record a trade entry in the journal",
	Long: `Record a trade entry with computed size, stop and target.

The entry price defaults to the current mark price; override it with
--entry when the fill differed. Risk gates are checked first and a
denial aborts the entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().Float64Var(&openEntry, "entry", 0, "entry price (default: current mark price)")
}

func runOpen(cmd *cobra.Command, args []string) error {
	var dir model.Direction
	switch strings.ToLower(args[0]) {
	case "long":
		dir = model.Long
	case "short":
		dir = model.Short
	default:
		return fmt.Errorf("direction must be long or short, got %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	now := time.Now().In(a.clock.Location())
	day, err := a.journal.Day(ctx)
	if err != nil {
		return err
	}
	if dec := a.gate.Check(day, now); !dec.Allowed {
		return fmt.Errorf("blocked by %s gate: %s", dec.Gate, dec.Reason)
	}

	entry := openEntry
	if entry == 0 {
		client := feed.NewClient(a.log)
		entry, err = client.MarkPrice(ctx, a.cfg.Symbol)
		if err != nil {
			return fmt.Errorf("fetch mark price (use --entry to override): %w", err)
		}
	}

	sizing := a.sizer.Size()
	levels := a.sizer.LevelsFor(entry, dir)

	id, err := a.journal.AppendTrade(ctx, model.TradeRecord{
		Direction:    dir,
		EntryPrice:   levels.Entry,
		StopPrice:    levels.Stop,
		TargetPrice:  levels.Target,
		PositionSize: sizing.Size,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Opened trade #%d: %s $%.0f @ $%.2f (stop $%.2f, target $%.2f, risk $%.2f)\n",
		id, dir, sizing.Size, levels.Entry, levels.Stop, levels.Target, sizing.RiskAmount)
	return nil
}
