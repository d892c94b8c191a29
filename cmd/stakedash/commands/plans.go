package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/logging"
)

type jsonPlan struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	MinAmount         decimal.Decimal `json:"min_amount"`
	MinAmountUSD      decimal.Decimal `json:"min_amount_usd"`
	MaxAmount         decimal.Decimal `json:"max_amount"`
	DailyYieldPercent decimal.Decimal `json:"daily_yield_percent"`
	LockPeriodDays    int             `json:"lock_period_days"`
	BonusNote         string          `json:"bonus_note,omitempty"`
	Description       string          `json:"description,omitempty"`
}

// NewPlansCmd creates the plan catalog command.
func NewPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Show available staking plans",
		Long:  "Display the staking plan catalog with minimum amounts in ETH and USD.",
		RunE:  runPlans,
	}
}

func runPlans(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	err := WithSpinner("Fetching plans...", func() error {
		return app.Dashboard.Stores().Plans.LoadOnce(ctx, app.Client.Plans)
	})
	if err != nil {
		logging.Warn("plan catalog unavailable", logging.Err(err), logging.Component("cli"))
		Warning("Could not load live plans; showing the published catalog.")
	}

	quote := app.Prices.Quote(ctx)
	plans := app.Dashboard.Catalog().Plans()

	if jsonOutput() {
		out := make([]jsonPlan, 0, len(plans))
		for _, p := range plans {
			out = append(out, jsonPlan{
				ID:                p.ID,
				Name:              p.Name,
				MinAmount:         p.MinAmount,
				MinAmountUSD:      quote.ToUSD(p.MinAmount),
				MaxAmount:         p.MaxAmount,
				DailyYieldPercent: p.DailyYieldPercent,
				LockPeriodDays:    p.LockPeriodDays,
				BonusNote:         p.BonusNote,
				Description:       p.Description,
			})
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	if quote.Fallback {
		fmt.Fprintln(w, WarningBanner(fmt.Sprintf("ETH price unavailable (%s); USD values use %s", quote.Reason, FormatUSD(quote.USD))))
	}
	fmt.Fprintln(w, RenderTable(planHeaders, planRows(plans, quote.ToUSD)))
	fmt.Fprintln(w, Hint("Stake with: stakedash deposit <plan-id>"))
	return nil
}
