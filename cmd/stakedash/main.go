package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/cmd/stakedash/commands"
)

var rootCmd = &cobra.Command{
	Use:   "stakedash",
	Short: "ETH staking dashboard",
	Long:  "Track stakes, lock-term countdowns and referral rewards, and manage deposits, unstakes and restakes.",

	PersistentPreRunE: commands.Setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	commands.RegisterGlobalFlags(rootCmd)
}

func main() {
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewDashboardCmd())
	rootCmd.AddCommand(commands.NewStakesCmd())
	rootCmd.AddCommand(commands.NewPlansCmd())
	rootCmd.AddCommand(commands.NewDepositCmd())
	rootCmd.AddCommand(commands.NewUnstakeCmd())
	rootCmd.AddCommand(commands.NewRestakeCmd())
	rootCmd.AddCommand(commands.NewReferralCmd())
	rootCmd.AddCommand(commands.NewWithdrawCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())
	rootCmd.AddCommand(commands.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
