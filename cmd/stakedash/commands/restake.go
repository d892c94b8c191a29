package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/coordinator"
)

var restakeYes bool

// NewRestakeCmd creates the restake command.
func NewRestakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restake <stake-id>",
		Short: "Roll a stake into a new lock term",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestake,
	}

	cmd.Flags().BoolVarP(&restakeYes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runRestake(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if err := app.RequireLogin(); err != nil {
		return err
	}

	stakeID := args[0]
	if _, err := loadAccount(ctx, app, "Loading stake..."); err != nil {
		if _, loaded := app.Dashboard.Stores().Stakes.Get(); !loaded {
			return fmt.Errorf("failed to load stakes: %w", err)
		}
	}
	stake, ok := app.Dashboard.Stake(stakeID)
	if !ok {
		return fmt.Errorf("stake %q not found", stakeID)
	}

	ok, err := confirm(
		fmt.Sprintf("Restake %s?", stakeID),
		fmt.Sprintf("%s in %s. Current term: %s.",
			FormatETH(stake.Principal), app.Dashboard.Catalog().PlanName(stake.PlanID), countdownFor(stake, time.Now())),
		restakeYes,
	)
	if err != nil {
		return err
	}
	if !ok {
		Info("Restake cancelled.")
		return nil
	}

	var outcome coordinator.Outcome
	_ = WithSpinner("Submitting restake...", func() error {
		outcome = app.Coordinator.Restake(ctx, stakeID)
		return nil
	})
	if err := finishAction(cmd.OutOrStdout(), app, coordinator.KindRestake, stakeID, outcome); err != nil {
		return err
	}

	_ = app.Dashboard.Refresh(ctx)
	return nil
}
