package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/coordinator"
	"github.com/chukwumela909/project-bolt/internal/logging"
)

// NewDepositCmd creates the deposit address command.
func NewDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <plan-id>",
		Short: "Get a deposit address for a plan",
		Long: `Request a deposit address for the given staking plan.

The stake is opened by the backend once ETH arrives at the address.
List plan ids with 'stakedash plans'.`,
		Args: cobra.ExactArgs(1),
		RunE: runDeposit,
	}
}

func runDeposit(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if err := app.RequireLogin(); err != nil {
		return err
	}

	planID := args[0]
	if err := app.Dashboard.Stores().Plans.LoadOnce(ctx, app.Client.Plans); err != nil {
		logging.Warn("plan catalog unavailable", logging.Err(err), logging.Component("cli"))
	}
	plan, ok := app.Dashboard.Catalog().Lookup(planID)
	if !ok {
		return fmt.Errorf("unknown plan %q. See 'stakedash plans'", planID)
	}

	var outcome coordinator.Outcome
	_ = WithSpinner("Requesting deposit address...", func() error {
		outcome = app.Coordinator.Deposit(ctx, planID)
		return nil
	})

	w := cmd.OutOrStdout()
	if err := finishAction(w, app, coordinator.KindDeposit, planID, outcome); err != nil || jsonOutput() {
		return err
	}

	addr := app.Coordinator.DepositAddress()
	quote := app.Prices.Quote(ctx)
	fields := [][2]string{
		{"Plan", plan.Name},
		{"Address", addr},
		{"Minimum", FormatETHWithUSD(plan.MinAmount, quote.ToUSD(plan.MinAmount))},
	}
	if plan.MaxAmount.IsPositive() {
		fields = append(fields, [2]string{"Maximum", FormatETH(plan.MaxAmount)})
	}
	fmt.Fprintln(w, StatusBox("Deposit", fields))
	fmt.Fprintln(w, Hint("Send ETH on mainnet only. The stake appears once the deposit is confirmed."))
	return nil
}
