package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/dashboard"
)

var (
	stakesAll    bool
	stakesStatus string
)

// NewStakesCmd creates the stake list command.
func NewStakesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stakes",
		Aliases: []string{"ls"},
		Short:   "List your stakes",
		Long: `List stakes with plan, amount, rewards and lock countdown.

By default only active stakes are shown. Use --all to include every
status the server reports, or --status to filter on one.`,
		RunE: runStakes,
	}

	cmd.Flags().BoolVarP(&stakesAll, "all", "a", false, "Include stakes in every status")
	cmd.Flags().StringVar(&stakesStatus, "status", "", "Only show stakes with this status")

	return cmd
}

func runStakes(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if err := app.RequireLogin(); err != nil {
		return err
	}

	refreshErr := WithSpinner("Fetching stakes...", func() error {
		return app.Dashboard.Refresh(ctx)
	})
	if _, loaded := app.Dashboard.Stores().Stakes.Get(); !loaded {
		return fmt.Errorf("failed to list stakes: %w", refreshErr)
	}

	stakes := filterStakes(app.Dashboard.View(), stakesAll, stakesStatus)

	if jsonOutput() {
		out := make([]jsonStake, 0, len(stakes))
		for _, s := range stakes {
			out = append(out, stakeJSON(s))
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	if len(stakes) == 0 {
		Info("No stakes found.")
		fmt.Fprintln(w, Hint("Open one with: stakedash deposit <plan-id>"))
		return nil
	}

	fmt.Fprintln(w, RenderTable(stakeHeaders, stakeRows(stakes)))
	fmt.Fprintln(w, StyleMuted.Render(fmt.Sprintf("  %d stake(s)", len(stakes))))
	return nil
}

func filterStakes(v *dashboard.View, all bool, status string) []dashboard.StakeView {
	if status == "" && !all {
		return v.ActiveStakes()
	}
	out := make([]dashboard.StakeView, 0, len(v.Stakes))
	for _, s := range v.Stakes {
		if status != "" && string(s.Stake.Status) != status {
			continue
		}
		out = append(out, s)
	}
	return out
}
