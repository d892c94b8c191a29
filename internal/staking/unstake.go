package staking

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/pkg/types"
)

// FeePercent is the fixed platform fee applied to every unstake.
const FeePercent = 5

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateAddress checks the destination format only; it does not verify
// the checksum or that the account exists on chain.
func ValidateAddress(addr string) error {
	if !addressPattern.MatchString(addr) {
		return &ValidationError{Field: "address", Value: addr, Err: ErrInvalidAddress}
	}
	return nil
}

// NormalizeAddress returns the EIP-55 checksummed form of a valid address.
func NormalizeAddress(addr string) (string, error) {
	if err := ValidateAddress(addr); err != nil {
		return "", err
	}
	return common.HexToAddress(addr).Hex(), nil
}

// ParseAmount parses a user-entered amount and requires it to be positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Value: raw, Err: ErrInvalidAmount}
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Value: amount.String(), Err: ErrInvalidAmount}
	}
	return nil
}

// percentOf returns amount * pct / 100. Dividing by 100 is an exact decimal shift.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Shift(-2)
}

// UnstakeInput is everything the calculator needs for one request.
type UnstakeInput struct {
	Principal      decimal.Decimal
	Earnings       decimal.Decimal
	PenaltyPercent decimal.Decimal
	Requested      decimal.Decimal
	Destination    string
}

// Quote is the breakdown shown before an unstake is confirmed.
type Quote struct {
	Requested      decimal.Decimal
	PenaltyPercent decimal.Decimal
	FeePercent     decimal.Decimal
	Penalty        decimal.Decimal
	Fee            decimal.Decimal
	Net            decimal.Decimal
	Withdrawable   decimal.Decimal
	Destination    string

	// ExceedsBalance is a warning only; the backend enforces the real limit.
	ExceedsBalance bool
}

// Breakdown computes penalty, fee and net payout without validation.
// net = requested * (1 - penaltyPct/100 - feePct/100), exactly.
func Breakdown(requested, penaltyPct, feePct decimal.Decimal) (penalty, fee, net decimal.Decimal) {
	penalty = percentOf(requested, penaltyPct)
	fee = percentOf(requested, feePct)
	net = requested.Sub(penalty).Sub(fee)
	return penalty, fee, net
}

// QuoteUnstake validates the request and computes its breakdown.
func QuoteUnstake(in UnstakeInput) (*Quote, error) {
	if err := ValidateAmount(in.Requested); err != nil {
		return nil, err
	}
	if err := ValidateAddress(in.Destination); err != nil {
		return nil, err
	}

	feePct := decimal.NewFromInt(FeePercent)
	penalty, fee, net := Breakdown(in.Requested, in.PenaltyPercent, feePct)
	withdrawable := in.Principal.Add(in.Earnings)

	return &Quote{
		Requested:      in.Requested,
		PenaltyPercent: in.PenaltyPercent,
		FeePercent:     feePct,
		Penalty:        penalty,
		Fee:            fee,
		Net:            net,
		Withdrawable:   withdrawable,
		Destination:    in.Destination,
		ExceedsBalance: in.Requested.GreaterThan(withdrawable),
	}, nil
}

// QuoteForStake is QuoteUnstake with the economic terms taken from a stake record.
func QuoteForStake(s types.StakeRecord, requested decimal.Decimal, destination string) (*Quote, error) {
	return QuoteUnstake(UnstakeInput{
		Principal:      s.Principal,
		Earnings:       s.Earnings,
		PenaltyPercent: s.PenaltyPercent,
		Requested:      requested,
		Destination:    destination,
	})
}

// ValidateWithdrawal guards a referral-earnings withdrawal. Unlike unstake,
// exceeding the available balance is a hard error.
func ValidateWithdrawal(amount, available decimal.Decimal, address string) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(available) {
		return &ValidationError{Field: "amount", Value: amount.String(), Err: ErrExceedsAvailable}
	}
	return ValidateAddress(address)
}
