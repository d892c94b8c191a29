package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/internal/dashboard"
	"github.com/chukwumela909/project-bolt/internal/staking"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// JSON shapes. Amounts are decimal strings.

type jsonSummary struct {
	ActiveStakes    int             `json:"active_stakes"`
	TotalStaked     decimal.Decimal `json:"total_staked"`
	TotalRewards    decimal.Decimal `json:"total_rewards"`
	DailyRewards    decimal.Decimal `json:"daily_rewards"`
	ReferralRewards decimal.Decimal `json:"referral_rewards"`
	ETHUSD          decimal.Decimal `json:"eth_usd"`
	PriceFallback   bool            `json:"price_fallback"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type jsonStake struct {
	ID                 string          `json:"id"`
	Plan               string          `json:"plan"`
	PlanID             string          `json:"plan_id"`
	Status             string          `json:"status"`
	Amount             decimal.Decimal `json:"amount"`
	Earnings           decimal.Decimal `json:"earnings"`
	AmountUSD          decimal.Decimal `json:"amount_usd"`
	PenaltyPercent     decimal.Decimal `json:"penalty_percent"`
	StakedAt           string          `json:"staked_at"`
	DaysRemaining      *int            `json:"days_remaining,omitempty"`
	BonusDaysRemaining *int            `json:"bonus_days_remaining,omitempty"`
	CountdownError     string          `json:"countdown_error,omitempty"`
	Restake            string          `json:"restake"`
}

type jsonReferral struct {
	Code       string          `json:"code"`
	Link       string          `json:"link"`
	Total      int             `json:"total"`
	Active     int             `json:"active"`
	Rewards    decimal.Decimal `json:"rewards"`
	RewardsUSD decimal.Decimal `json:"rewards_usd"`
}

type jsonDashboard struct {
	Summary  jsonSummary  `json:"summary"`
	Stakes   []jsonStake  `json:"stakes"`
	Referral jsonReferral `json:"referral"`
}

func summaryJSON(v *dashboard.View) jsonSummary {
	return jsonSummary{
		ActiveStakes:    v.Summary.ActiveStakes,
		TotalStaked:     v.Summary.TotalStaked,
		TotalRewards:    v.Summary.TotalRewards,
		DailyRewards:    v.Summary.DailyRewards,
		ReferralRewards: v.Summary.ReferralRewards,
		ETHUSD:          v.Price.USD,
		PriceFallback:   v.Price.Fallback,
		UpdatedAt:       v.UpdatedAt,
	}
}

func stakeJSON(s dashboard.StakeView) jsonStake {
	out := jsonStake{
		ID:             s.Stake.ID,
		Plan:           s.PlanName,
		PlanID:         s.Stake.PlanID,
		Status:         string(s.Stake.Status),
		Amount:         s.Stake.Principal,
		Earnings:       s.Stake.Earnings,
		AmountUSD:      s.PrincipalUSD,
		PenaltyPercent: s.Stake.PenaltyPercent,
		StakedAt:       s.Stake.StakedAt,
		Restake:        s.Stake.Restake.String(),
	}
	if s.Active {
		if s.CountdownErr != nil {
			out.CountdownError = s.CountdownErr.Error()
		} else {
			days, bonus := s.Countdown.DaysRemaining, s.Countdown.BonusDaysRemaining
			out.DaysRemaining = &days
			out.BonusDaysRemaining = &bonus
		}
	}
	return out
}

func referralJSON(r dashboard.ReferralView) jsonReferral {
	return jsonReferral(r)
}

func dashboardJSON(v *dashboard.View) jsonDashboard {
	out := jsonDashboard{
		Summary:  summaryJSON(v),
		Stakes:   make([]jsonStake, 0, len(v.Stakes)),
		Referral: referralJSON(v.Referral),
	}
	for _, s := range v.ActiveStakes() {
		out.Stakes = append(out.Stakes, stakeJSON(s))
	}
	return out
}

// countdownCell renders the time-remaining column.
func countdownCell(s dashboard.StakeView) string {
	if !s.Active {
		return "-"
	}
	if s.CountdownErr != nil {
		return "invalid date"
	}
	if s.Countdown.Matured {
		return "matured"
	}
	return fmt.Sprintf("%d days", s.Countdown.DaysRemaining)
}

// bonusCell renders the bonus-window column.
func bonusCell(s dashboard.StakeView) string {
	if !s.Active || s.CountdownErr != nil {
		return "-"
	}
	if s.Countdown.BonusDaysRemaining == 0 {
		return "closed"
	}
	return strconv.Itoa(s.Countdown.BonusDaysRemaining) + " days"
}

func stakeRows(stakes []dashboard.StakeView) [][]string {
	rows := make([][]string, 0, len(stakes))
	for _, s := range stakes {
		rows = append(rows, []string{
			s.Stake.ID,
			s.PlanName,
			StatusBadge(string(s.Stake.Status)),
			FormatETH(s.Stake.Principal),
			FormatUSD(s.PrincipalUSD),
			FormatETH(s.Stake.Earnings),
			countdownCell(s),
			bonusCell(s),
			s.Stake.Restake.String(),
		})
	}
	return rows
}

var stakeHeaders = []string{"ID", "PLAN", "STATUS", "AMOUNT", "USD", "REWARDS", "REMAINING", "BONUS", "RESTAKE"}

// renderDashboard writes the full dashboard view.
func renderDashboard(w io.Writer, v *dashboard.View) {
	if warn := v.PriceWarning(); warn != "" {
		fmt.Fprintln(w, WarningBanner(warn))
	}

	account := "-"
	if v.Account != nil {
		account = v.Account.Email
		if v.Account.Name != "" {
			account = v.Account.Name + " <" + v.Account.Email + ">"
		}
	}

	fmt.Fprintln(w, StatusBox(Logo()+" Dashboard", [][2]string{
		{"Account", account},
		{"Active stakes", strconv.Itoa(v.Summary.ActiveStakes)},
		{"Total staked", FormatETHWithUSD(v.Summary.TotalStaked, v.Summary.TotalStakedUSD)},
		{"Total rewards", FormatETHWithUSD(v.Summary.TotalRewards, v.Summary.TotalRewardsUSD)},
		{"Daily rewards", FormatETHWithUSD(v.Summary.DailyRewards, v.Summary.DailyRewardsUSD)},
		{"Referral rewards", FormatETHWithUSD(v.Summary.ReferralRewards, v.Summary.ReferralRewardsUSD)},
		{"ETH price", FormatUSD(v.Price.USD)},
	}))

	fmt.Fprintln(w, SectionHeader("Active Stakes"))
	active := v.ActiveStakes()
	if len(active) == 0 {
		fmt.Fprintln(w, Hint("No active stakes. See available plans with: stakedash plans"))
	} else {
		fmt.Fprintln(w, RenderTable(stakeHeaders, stakeRows(active)))
		for _, s := range active {
			if s.CountdownErr != nil {
				fmt.Fprintln(w, Hint(fmt.Sprintf("stake %s: unreadable start date %q", s.Stake.ID, s.Stake.StakedAt)))
			}
		}
	}

	fmt.Fprintln(w, SectionHeader("Referrals"))
	renderReferral(w, v.Referral)

	fmt.Fprintln(w)
	updated := "never"
	if !v.UpdatedAt.IsZero() {
		updated = v.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	fmt.Fprintln(w, Hint("Last updated: "+updated))
}

func renderReferral(w io.Writer, r dashboard.ReferralView) {
	code := r.Code
	if code == "" {
		code = "-"
	}
	fmt.Fprintln(w, KeyValue("Code", code))
	if r.Link != "" {
		fmt.Fprintln(w, KeyValue("Link", r.Link))
	}
	fmt.Fprintln(w, KeyValue("Referrals", fmt.Sprintf("%d total, %d active", r.Total, r.Active)))
	fmt.Fprintln(w, KeyValue("Rewards", FormatETHWithUSD(r.Rewards, r.RewardsUSD)))
}

// planRows renders the plan catalog.
func planRows(plans []types.Plan, usd func(decimal.Decimal) decimal.Decimal) [][]string {
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		maxAmount := "-"
		if p.MaxAmount.IsPositive() {
			maxAmount = FormatETH(p.MaxAmount)
		}
		rows = append(rows, []string{
			p.ID,
			p.Name,
			FormatETH(p.MinAmount) + " / " + FormatUSD(usd(p.MinAmount)),
			maxAmount,
			p.DailyYieldPercent.String() + "%",
			strconv.Itoa(p.LockPeriodDays) + " days",
			strings.TrimSpace(p.BonusNote),
		})
	}
	return rows
}

var planHeaders = []string{"ID", "NAME", "MIN", "MAX", "DAILY", "LOCK", "BONUS"}

// countdownFor is used by commands that operate on a single stake.
func countdownFor(s types.StakeRecord, now time.Time) string {
	c, err := staking.ComputeCountdown(s, now)
	if err != nil {
		return "unknown (unreadable start date)"
	}
	if c.Matured {
		return "lock term complete"
	}
	return fmt.Sprintf("%d days remaining, bonus window %d days", c.DaysRemaining, c.BonusDaysRemaining)
}
