package types

import (
	"github.com/shopspring/decimal"
)

// DefaultLockPeriodDays is the lock term shared by every published plan.
const DefaultLockPeriodDays = 180

// Plan is an entry of the plan catalog. Plans are immutable for the session once fetched.
type Plan struct {
	ID                string
	Name              string
	MinAmount         decimal.Decimal
	MaxAmount         decimal.Decimal // zero means no upper bound
	DailyYieldPercent decimal.Decimal
	LockPeriodDays    int
	BonusNote         string
	Icon              string
	Color             string
	Description       string
}

// User is the aggregate account record. Money totals here are server
// authoritative and are displayed as-is, never re-derived from stakes.
type User struct {
	ID               string
	Name             string
	Email            string
	Country          string
	Phone            string
	Earnings         decimal.Decimal
	ReferralCode     string
	TotalReferrals   int
	ActiveReferrals  int
	ReferralRewards  decimal.Decimal
	TotalStaked      decimal.Decimal
	TotalRewards     decimal.Decimal
	ActiveStakeCount int
	DailyRewards     decimal.Decimal
}

// DefaultPlans returns the published plan set. It is used to name stakes
// before the backend catalog has loaded and as the offline catalog.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:                "045a88bc-e647-11ef-8679-04421a23dd01",
			Name:              "Core Vault",
			MinAmount:         decimal.RequireFromString("0.05"),
			DailyYieldPercent: decimal.RequireFromString("1.5"),
			LockPeriodDays:    DefaultLockPeriodDays,
			Icon:              "Wallet",
			Color:             "from-blue-500 to-blue-600",
			Description:       "Entry-level users seeking stable, low-risk passive rewards.",
		},
		{
			ID:                "045a8a8b-e647-11ef-8679-04421a23dd01",
			Name:              "Growth Nexus",
			MinAmount:         decimal.RequireFromString("2"),
			DailyYieldPercent: decimal.RequireFromString("2.5"),
			LockPeriodDays:    DefaultLockPeriodDays,
			Icon:              "LineChart",
			Color:             "from-purple-500 to-purple-600",
			Description:       "Balanced growth with moderate risk and optimized reward generation.",
		},
		{
			ID:                "045a8b03-e647-11ef-8679-04421a23dd01",
			Name:              "Elite Matrix",
			MinAmount:         decimal.RequireFromString("10"),
			DailyYieldPercent: decimal.RequireFromString("3.5"),
			LockPeriodDays:    DefaultLockPeriodDays,
			Icon:              "Clock",
			Color:             "from-emerald-500 to-emerald-600",
			Description:       "Significant returns with a higher, but manageable, risk profile.",
		},
		{
			ID:                "174e640d-e6e1-11ef-8679-04421a23dd01",
			Name:              "Legacy Protocol",
			MinAmount:         decimal.RequireFromString("20"),
			DailyYieldPercent: decimal.RequireFromString("5"),
			LockPeriodDays:    DefaultLockPeriodDays,
			Icon:              "DollarSign",
			Color:             "from-amber-500 to-amber-600",
			Description:       "Larger contributions seeking maximum returns.",
		},
	}
}
