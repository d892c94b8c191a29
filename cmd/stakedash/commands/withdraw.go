package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/coordinator"
	"github.com/chukwumela909/project-bolt/internal/staking"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

var (
	withdrawAmount  string
	withdrawAddress string
	withdrawYes     bool
)

// NewWithdrawCmd creates the referral withdrawal command.
func NewWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw referral rewards",
		Long: `Withdraw referral rewards to an Ethereum address.

The amount may not exceed your current referral rewards.`,
		Args: cobra.NoArgs,
		RunE: runWithdraw,
	}

	cmd.Flags().StringVar(&withdrawAmount, "amount", "", "Amount of ETH to withdraw")
	cmd.Flags().StringVar(&withdrawAddress, "address", "", "Destination address (0x...)")
	cmd.Flags().BoolVarP(&withdrawYes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if err := app.RequireLogin(); err != nil {
		return err
	}

	v, err := loadAccount(ctx, app, "Loading balance...")
	if v.Account == nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	available := v.Account.ReferralRewards

	if err := promptValue("amount", "Amount to withdraw (ETH)", available.String(), &withdrawAmount, func(s string) error {
		_, err := staking.ParseAmount(s)
		return err
	}); err != nil {
		return err
	}
	if err := promptValue("address", "Destination address", "0x...", &withdrawAddress, staking.ValidateAddress); err != nil {
		return err
	}

	amount, err := staking.ParseAmount(withdrawAmount)
	if err != nil {
		return err
	}
	if err := staking.ValidateWithdrawal(amount, available, withdrawAddress); err != nil {
		return fmt.Errorf("%w (available: %s)", err, FormatETH(available))
	}

	ok, err := confirm(
		fmt.Sprintf("Withdraw %s?", FormatETH(amount)),
		"To "+displayAddress(withdrawAddress),
		withdrawYes,
	)
	if err != nil {
		return err
	}
	if !ok {
		Info("Withdrawal cancelled.")
		return nil
	}

	var outcome coordinator.Outcome
	_ = WithSpinner("Submitting withdrawal...", func() error {
		outcome = app.Coordinator.Withdraw(ctx, types.WithdrawRequest{Amount: amount, EthAddress: withdrawAddress})
		return nil
	})
	return finishAction(cmd.OutOrStdout(), app, coordinator.KindWithdraw, withdrawAddress, outcome)
}
