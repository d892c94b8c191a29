package dashboard

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/internal/pricefeed"
	"github.com/chukwumela909/project-bolt/internal/staking"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// Summary is the account header. Everything except ActiveStakes comes
// straight from the user record; the stake list is never re-summed.
type Summary struct {
	ActiveStakes    int
	TotalStaked     decimal.Decimal
	TotalRewards    decimal.Decimal
	DailyRewards    decimal.Decimal
	ReferralRewards decimal.Decimal

	TotalStakedUSD     decimal.Decimal
	TotalRewardsUSD    decimal.Decimal
	DailyRewardsUSD    decimal.Decimal
	ReferralRewardsUSD decimal.Decimal
}

// StakeView is one stake prepared for display.
type StakeView struct {
	Stake    types.StakeRecord
	PlanName string
	Active   bool

	// Countdown is zero when CountdownErr is set.
	Countdown    staking.Countdown
	CountdownErr error

	PrincipalUSD decimal.Decimal
	EarningsUSD  decimal.Decimal

	// RestakeOffered is always true; the backend's restake flag is shown
	// but does not gate the action.
	RestakeOffered bool
}

// ReferralView is the referral panel.
type ReferralView struct {
	Code       string
	Link       string
	Total      int
	Active     int
	Rewards    decimal.Decimal
	RewardsUSD decimal.Decimal
}

// View is everything the dashboard renders for one refresh.
type View struct {
	Account   *types.User
	Summary   Summary
	Stakes    []StakeView
	Referral  ReferralView
	Price     pricefeed.Quote
	UpdatedAt time.Time
}

// ActiveStakes returns the stakes with status "staked".
func (v *View) ActiveStakes() []StakeView {
	var out []StakeView
	for _, s := range v.Stakes {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// PriceWarning returns a banner text when the quote is a fallback.
func (v *View) PriceWarning() string {
	if !v.Price.Fallback {
		return ""
	}
	if v.Price.Stale {
		return "ETH price feed unavailable (" + v.Price.Reason + "); showing last known price"
	}
	return "ETH price feed unavailable (" + v.Price.Reason + "); showing default price"
}

// Inputs are the store contents a view is built from.
type Inputs struct {
	User            *types.User
	Stakes          []types.StakeRecord
	Catalog         *staking.Catalog
	Price           pricefeed.Quote
	ReferralBaseURL string
	UpdatedAt       time.Time
}

// BuildView derives the view at now. It never fails: a stake with a bad
// timestamp carries its own CountdownErr.
func BuildView(in Inputs, now time.Time) *View {
	catalog := in.Catalog
	if catalog == nil {
		catalog = staking.DefaultCatalog()
	}
	user := in.User
	if user == nil {
		user = &types.User{}
	}
	usd := in.Price.ToUSD

	v := &View{
		Account:   in.User,
		Price:     in.Price,
		UpdatedAt: in.UpdatedAt,
		Stakes:    make([]StakeView, 0, len(in.Stakes)),
	}

	for _, s := range in.Stakes {
		sv := StakeView{
			Stake:          s,
			PlanName:       catalog.PlanName(s.PlanID),
			Active:         s.Status.IsActive(),
			PrincipalUSD:   usd(s.Principal),
			EarningsUSD:    usd(s.Earnings),
			RestakeOffered: true,
		}
		if sv.Active {
			v.Summary.ActiveStakes++
			sv.Countdown, sv.CountdownErr = staking.ComputeCountdown(s, now)
		}
		v.Stakes = append(v.Stakes, sv)
	}

	v.Summary.TotalStaked = user.TotalStaked
	v.Summary.TotalRewards = user.TotalRewards
	v.Summary.DailyRewards = user.DailyRewards
	v.Summary.ReferralRewards = user.ReferralRewards
	v.Summary.TotalStakedUSD = usd(user.TotalStaked)
	v.Summary.TotalRewardsUSD = usd(user.TotalRewards)
	v.Summary.DailyRewardsUSD = usd(user.DailyRewards)
	v.Summary.ReferralRewardsUSD = usd(user.ReferralRewards)

	v.Referral = ReferralView{
		Code:       user.ReferralCode,
		Link:       ReferralLink(in.ReferralBaseURL, user.ReferralCode),
		Total:      user.TotalReferrals,
		Active:     user.ActiveReferrals,
		Rewards:    user.ReferralRewards,
		RewardsUSD: usd(user.ReferralRewards),
	}
	return v
}

// ReferralLink returns <base>?ref=<code>, or "" without a code.
func ReferralLink(base, code string) string {
	if code == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "?ref=" + url.QueryEscape(code)
}
