package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rsimaster/internal/model"
)

var (
	closePnL    float64
	closeResult string
)

var closeCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close an open trade with its result",
	Long: `Close an open trade, recording its realized profit or loss.

The result defaults to the sign of --pnl (positive = win, negative =
loss, zero = breakeven); pass --result to override, e.g. a tiny
positive pnl you consider breakeven.`,
	Args: cobra.ExactArgs(1),
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
	closeCmd.Flags().Float64Var(&closePnL, "pnl", 0, "realized profit or loss")
	closeCmd.Flags().StringVar(&closeResult, "result", "", "win | loss | breakeven (default: pnl sign)")
}

func runClose(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid trade id %q", args[0])
	}

	var result model.TradeResult
	switch strings.ToLower(closeResult) {
	case "win":
		result = model.ResultWin
	case "loss":
		result = model.ResultLoss
	case "breakeven":
		result = model.ResultBreakeven
	case "":
		switch {
		case closePnL > 0:
			result = model.ResultWin
		case closePnL < 0:
			result = model.ResultLoss
		default:
			result = model.ResultBreakeven
		}
	default:
		return fmt.Errorf("result must be win, loss or breakeven, got %q", closeResult)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.journal.CloseTrade(cmd.Context(), id, closePnL, result); err != nil {
		return err
	}

	st, err := a.journal.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Closed trade #%d as %s (pnl %+.2f)\n", id, result, closePnL)
	fmt.Printf("Today: %dW/%dL, pnl %+.2f, loss streak %d\n",
		st.Wins, st.Losses, st.TotalPnL, st.ConsecutiveLosses)
	if result == model.ResultLoss && st.ConsecutiveLosses >= a.cfg.MaxConsecutiveLosses {
		fmt.Printf("Loss streak reached %d — the scanner will hold entries for %s\n",
			st.ConsecutiveLosses, a.cfg.Cooldown)
	}
	return nil
}
