package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReferralCmd creates the referral summary command.
func NewReferralCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "referral",
		Short: "Referral code and earnings",
		Long:  "Display your referral code, shareable link, referral counts and referral rewards.",
		RunE:  runReferral,
	}
}

func runReferral(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if err := app.RequireLogin(); err != nil {
		return err
	}

	refreshErr := WithSpinner("Fetching referral data...", func() error {
		return app.Dashboard.Refresh(ctx)
	})
	v := app.Dashboard.View()
	if v.Account == nil {
		return fmt.Errorf("failed to get referral data: %w", refreshErr)
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), referralJSON(v.Referral))
	}

	r := v.Referral
	code := r.Code
	if code == "" {
		code = "-"
	}
	fields := [][2]string{
		{"Code", code},
	}
	if r.Link != "" {
		fields = append(fields, [2]string{"Link", r.Link})
	}
	fields = append(fields,
		[2]string{"Total referrals", fmt.Sprint(r.Total)},
		[2]string{"Active referrals", fmt.Sprint(r.Active)},
		[2]string{"Rewards", FormatETHWithUSD(r.Rewards, r.RewardsUSD)},
	)

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, StatusBox("Referrals", fields))
	if r.Rewards.IsPositive() {
		fmt.Fprintln(w, Hint("Withdraw with: stakedash withdraw --amount <eth> --address <0x...>"))
	}
	return nil
}
