package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/coordinator"
	"github.com/chukwumela909/project-bolt/internal/staking"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

var (
	unstakeAmount  string
	unstakeAddress string
	unstakeYes     bool
)

// NewUnstakeCmd creates the unstake command.
func NewUnstakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unstake <stake-id>",
		Short: "Withdraw from a stake",
		Long: `Withdraw part or all of a stake to an Ethereum address.

Before anything is sent the early-exit penalty, the 5% platform fee and
the net payout are shown for confirmation. Requests above principal plus
rewards are allowed with a warning; the backend enforces the real limit.`,
		Args: cobra.ExactArgs(1),
		RunE: runUnstake,
	}

	cmd.Flags().StringVar(&unstakeAmount, "amount", "", "Amount of ETH to withdraw")
	cmd.Flags().StringVar(&unstakeAddress, "address", "", "Destination address (0x...)")
	cmd.Flags().BoolVarP(&unstakeYes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runUnstake(cmd *cobra.Command, args []string) error {
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
	if !stake.Status.IsActive() {
		return fmt.Errorf("stake %s is %s, only active stakes can be unstaked", stakeID, stake.Status)
	}

	if err := promptValue("amount", "Amount to unstake (ETH)", stake.Withdrawable().String(), &unstakeAmount, func(s string) error {
		_, err := staking.ParseAmount(s)
		return err
	}); err != nil {
		return err
	}
	if err := promptValue("address", "Destination address", "0x...", &unstakeAddress, staking.ValidateAddress); err != nil {
		return err
	}

	amount, err := staking.ParseAmount(unstakeAmount)
	if err != nil {
		return err
	}
	quote, err := staking.QuoteForStake(stake, amount, unstakeAddress)
	if err != nil {
		return err
	}

	price := app.Prices.Quote(ctx)
	if !jsonOutput() {
		renderUnstakeQuote(cmd.ErrOrStderr(), stake, quote, price.ToUSD)
	}
	if quote.ExceedsBalance {
		Warning(fmt.Sprintf("Requested %s is more than the %s available on this stake", FormatETH(quote.Requested), FormatETH(quote.Withdrawable)))
	}

	ok, err = confirm(
		fmt.Sprintf("Unstake %s from %s?", FormatETH(quote.Requested), stakeID),
		fmt.Sprintf("You will receive %s at %s", FormatETH(quote.Net), displayAddress(quote.Destination)),
		unstakeYes,
	)
	if err != nil {
		return err
	}
	if !ok {
		Info("Unstake cancelled.")
		return nil
	}

	var outcome coordinator.Outcome
	_ = WithSpinner("Submitting unstake...", func() error {
		outcome = app.Coordinator.Unstake(ctx, types.UnstakeRequest{
			StakeID:       stakeID,
			WalletAddress: quote.Destination,
			Amount:        quote.Requested,
		})
		return nil
	})
	if err := finishAction(cmd.OutOrStdout(), app, coordinator.KindUnstake, stakeID, outcome); err != nil {
		return err
	}

	// The stake list changes after a successful unstake.
	_ = app.Dashboard.Refresh(ctx)
	return nil
}

func renderUnstakeQuote(w io.Writer, s types.StakeRecord, q *staking.Quote, usd func(decimal.Decimal) decimal.Decimal) {
	fmt.Fprintln(w, StatusBox("Unstake "+s.ID, [][2]string{
		{"Lock term", countdownFor(s, time.Now())},
		{"Available", FormatETH(q.Withdrawable)},
		{"Requested", FormatETHWithUSD(q.Requested, usd(q.Requested))},
		{"Penalty (" + q.PenaltyPercent.String() + "%)", "-" + FormatETH(q.Penalty)},
		{"Fee (" + q.FeePercent.String() + "%)", "-" + FormatETH(q.Fee)},
		{"You receive", FormatETHWithUSD(q.Net, usd(q.Net))},
		{"Destination", displayAddress(q.Destination)},
	}))
}
