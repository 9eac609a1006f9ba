package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rsimaster/internal/model"
)

var journalCmd = &cobra.Command{
	Use:   "journal [YYYY-MM-DD]",
	Short: "Show a day's signals, trades and statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	date := time.Now().In(a.clock.Location()).Format("2006-01-02")
	if len(args) == 1 {
		if _, err := time.Parse("2006-01-02", args[0]); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0])
		}
		date = args[0]
	}

	day, err := a.journal.DayFor(cmd.Context(), date)
	if err != nil {
		return err
	}

	fmt.Printf("Journal %s\n\n", day.Date)

	if len(day.Trades) == 0 {
		fmt.Println("No trades.")
	}
	for _, t := range day.Trades {
		fmt.Printf("#%d %-5s %s  entry $%.2f  stop $%.2f  target $%.2f  size $%.0f\n",
			t.ID, t.Direction, t.Status, t.EntryPrice, t.StopPrice, t.TargetPrice, t.PositionSize)
		if t.Status == model.StatusClosed {
			closed := ""
			if t.CloseTime != nil {
				closed = t.CloseTime.Format("15:04:05")
			}
			fmt.Printf("    closed %s  %s  pnl %+.2f\n", closed, t.Result, t.PnL)
		}
	}
	fmt.Println()

	if len(day.SignalsDetected) > 0 {
		fmt.Printf("Signals (%d):\n", len(day.SignalsDetected))
		for _, s := range day.SignalsDetected {
			fmt.Printf("  %s %-5s osc %.1f  price $%.2f  trend $%.2f\n",
				s.Time, s.Direction, s.Oscillator, s.Price, s.TrendValue)
		}
		fmt.Println()
	}

	st := day.Stats
	fmt.Printf("Stats: %d trades, %dW/%dL, pnl %+.2f, loss streak %d, signals ignored %d\n",
		st.TotalTrades, st.Wins, st.Losses, st.TotalPnL, st.ConsecutiveLosses, st.SignalsIgnored)

	return nil
}
