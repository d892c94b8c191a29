package types

import (
	"github.com/shopspring/decimal"
)

// StakeStatus is the backend-reported state of a stake.
// Only StakeStatusStaked has meaning on the client; every other value is
// passed through untouched for display and filtering.
type StakeStatus string

const (
	StakeStatusStaked   StakeStatus = "staked"
	StakeStatusUnstaked StakeStatus = "unstaked"
	StakeStatusPending  StakeStatus = "pending"
)

// IsActive reports whether the stake counts towards the active positions list.
func (s StakeStatus) IsActive() bool {
	return s == StakeStatusStaked
}

// RestakeFlag is the tri-state restake marker carried on a stake record.
type RestakeFlag string

const (
	RestakeFlagUnset RestakeFlag = ""
	RestakeFlagOff   RestakeFlag = "0"
	RestakeFlagOn    RestakeFlag = "1"
)

// String returns a display label for the flag.
func (f RestakeFlag) String() string {
	switch f {
	case RestakeFlagOn:
		return "restaked"
	case RestakeFlagOff:
		return "eligible"
	default:
		return "-"
	}
}

// StakeRecord is a user's locked position under a plan, as reported by the backend.
// Records are only ever built by the client decode boundary (or tests); the
// client never mutates one after it is fetched.
type StakeRecord struct {
	ID             string
	UserID         string
	PlanID         string
	Principal      decimal.Decimal
	Earnings       decimal.Decimal
	Status         StakeStatus
	LockPeriodDays int
	PenaltyPercent decimal.Decimal
	LoyaltyBonus   decimal.Decimal
	BonusNote      string
	DepositAddress string
	TxID           string

	// StakedAt is kept raw; lifecycle functions parse its date portion
	// and report malformed values per stake.
	StakedAt   string
	DueAt      string
	CreatedAt  string
	UnstakedAt string

	Restake RestakeFlag
}

// Withdrawable returns principal plus earnings, the soft ceiling for an unstake request.
func (s StakeRecord) Withdrawable() decimal.Decimal {
	return s.Principal.Add(s.Earnings)
}

// UnstakeRequest is the payload of an unstake action.
type UnstakeRequest struct {
	StakeID       string
	WalletAddress string
	Amount        decimal.Decimal
}

// WithdrawRequest is the payload of a referral-earnings withdrawal.
type WithdrawRequest struct {
	Amount     decimal.Decimal
	EthAddress string
}
