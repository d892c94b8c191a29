package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/recorder"
)

var (
	historyLimit   int
	historyActions bool
	historyPrune   int
)

type jsonSnapshot struct {
	At              time.Time       `json:"at"`
	TotalStaked     decimal.Decimal `json:"total_staked"`
	TotalRewards    decimal.Decimal `json:"total_rewards"`
	DailyRewards    decimal.Decimal `json:"daily_rewards"`
	ReferralRewards decimal.Decimal `json:"referral_rewards"`
	ActiveStakes    int             `json:"active_stakes"`
	ETHUSD          decimal.Decimal `json:"eth_usd"`
	PriceFallback   bool            `json:"price_fallback"`
}

type jsonAction struct {
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Outcome string    `json:"outcome"`
	Target  string    `json:"target"`
	Message string    `json:"message,omitempty"`
}

// NewHistoryCmd creates the local history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show locally recorded history",
		Long: `Display dashboard snapshots and actions recorded on this machine.

History is kept in a local SQLite database when history.enabled is set
in the config file.`,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of rows")
	cmd.Flags().BoolVar(&historyActions, "actions", false, "Show actions instead of snapshots")
	cmd.Flags().IntVar(&historyPrune, "prune-days", 0, "Delete rows older than this many days and exit")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if !app.Config.History.Enabled {
		Info("History is disabled.")
		fmt.Fprintln(cmd.OutOrStdout(), Hint("Enable it with history.enabled: true in "+configPath()))
		return nil
	}

	if historyPrune > 0 {
		n, err := app.Recorder.Prune(ctx, time.Now().AddDate(0, 0, -historyPrune))
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		Success(fmt.Sprintf("Removed %d row(s)", n))
		return nil
	}

	if historyActions {
		events, err := app.Recorder.Actions(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read actions: %w", err)
		}
		return writeActions(cmd, events)
	}

	snaps, err := app.Recorder.Snapshots(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read snapshots: %w", err)
	}
	return writeSnapshots(cmd, snaps)
}

func writeSnapshots(cmd *cobra.Command, snaps []recorder.Snapshot) error {
	if jsonOutput() {
		out := make([]jsonSnapshot, 0, len(snaps))
		for _, s := range snaps {
			out = append(out, jsonSnapshot(s))
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
	if len(snaps) == 0 {
		Info("No snapshots recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		price := FormatUSD(s.ETHUSD)
		if s.PriceFallback {
			price += " *"
		}
		rows = append(rows, []string{
			s.At.Local().Format("Jan 02 15:04"),
			FormatETH(s.TotalStaked),
			FormatETH(s.TotalRewards),
			FormatETH(s.DailyRewards),
			FormatETH(s.ReferralRewards),
			fmt.Sprint(s.ActiveStakes),
			price,
		})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, RenderTable([]string{"TIME", "STAKED", "REWARDS", "DAILY", "REFERRAL", "ACTIVE", "ETH/USD"}, rows))
	fmt.Fprintln(w, StyleMuted.Render("  * fallback price"))
	return nil
}

func writeActions(cmd *cobra.Command, events []recorder.ActionEvent) error {
	if jsonOutput() {
		out := make([]jsonAction, 0, len(events))
		for _, e := range events {
			out = append(out, jsonAction(e))
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
	if len(events) == 0 {
		Info("No actions recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		msg := e.Message
		if msg == "" {
			msg = "-"
		}
		rows = append(rows, []string{
			e.At.Local().Format("Jan 02 15:04"),
			e.Kind,
			StatusBadge(e.Outcome),
			e.Target,
			msg,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderTable([]string{"TIME", "ACTION", "RESULT", "TARGET", "MESSAGE"}, rows))
	return nil
}
