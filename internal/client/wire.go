package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/pkg/types"
)

var (
	errMissing  = errors.New("required field is missing")
	errNegative = errors.New("must not be negative")
)

var hundred = decimal.NewFromInt(100)

// flexString accepts a JSON string, number or null. The backend sends most
// numeric fields as strings but is not consistent about it.
type flexString struct {
	Value string
	Set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = flexString{}
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString{Value: strings.TrimSpace(s), Set: true}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = flexString{Value: n.String(), Set: true}
	default:
		return fmt.Errorf("expected string or number, got %s", b)
	}
	return nil
}

func (f flexString) present() bool {
	return f.Set && f.Value != ""
}

// fieldDecoder collects the first conversion failure of one record.
type fieldDecoder struct {
	endpoint string
	index    int
	err      *DecodeError
}

func (d *fieldDecoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &DecodeError{Endpoint: d.endpoint, Field: field, Index: d.index, Err: err}
	}
}

func (d *fieldDecoder) text(field string, f flexString, required bool) string {
	if required && !f.present() {
		d.fail(field, errMissing)
	}
	return f.Value
}

func (d *fieldDecoder) amount(field string, f flexString, required bool) decimal.Decimal {
	if !f.present() {
		if required {
			d.fail(field, errMissing)
		}
		return decimal.Zero
	}
	v, err := decimal.NewFromString(f.Value)
	if err != nil {
		d.fail(field, fmt.Errorf("not a number: %q", f.Value))
		return decimal.Zero
	}
	if v.IsNegative() {
		d.fail(field, errNegative)
	}
	return v
}

func (d *fieldDecoder) count(field string, f flexString, required bool) int {
	if !f.present() {
		if required {
			d.fail(field, errMissing)
		}
		return 0
	}
	v, err := strconv.Atoi(f.Value)
	if err != nil {
		// Some rows carry "180.0".
		dv, derr := decimal.NewFromString(f.Value)
		if derr != nil || !dv.IsInteger() {
			d.fail(field, fmt.Errorf("not an integer: %q", f.Value))
			return 0
		}
		v = int(dv.IntPart())
	}
	if v < 0 {
		d.fail(field, errNegative)
	}
	return v
}

type wireStake struct {
	ID             flexString `json:"id"`
	UserID         flexString `json:"user_id"`
	PlanID         flexString `json:"plan_id"`
	Amount         flexString `json:"amount"`
	Earnings       flexString `json:"earnings"`
	Status         flexString `json:"status"`
	DepositAddress flexString `json:"deposit_address"`
	LockPeriodDays flexString `json:"lock_period_days"`
	Penalty        flexString `json:"penalty"`
	LoyaltyBonus   flexString `json:"loyalty_bonus"`
	StakedAt       flexString `json:"staked_at"`
	Restake        flexString `json:"restake"`
	BonusNote      flexString `json:"bonus_note"`
	UnstakedAt     flexString `json:"unstaked_at"`
	TxID           flexString `json:"tx_id"`
	CreatedAt      flexString `json:"created_at"`
	Due            flexString `json:"due"`
}

func (w wireStake) record(endpoint string, index int) (types.StakeRecord, error) {
	d := &fieldDecoder{endpoint: endpoint, index: index}

	s := types.StakeRecord{
		ID:             d.text("id", w.ID, true),
		UserID:         w.UserID.Value,
		PlanID:         d.text("plan_id", w.PlanID, true),
		Principal:      d.amount("amount", w.Amount, true),
		Earnings:       d.amount("earnings", w.Earnings, false),
		Status:         types.StakeStatus(d.text("status", w.Status, true)),
		LockPeriodDays: d.count("lock_period_days", w.LockPeriodDays, true),
		PenaltyPercent: d.amount("penalty", w.Penalty, false),
		LoyaltyBonus:   d.amount("loyalty_bonus", w.LoyaltyBonus, false),
		BonusNote:      w.BonusNote.Value,
		DepositAddress: w.DepositAddress.Value,
		TxID:           w.TxID.Value,
		// Timestamps stay raw; a bad date only breaks that stake's countdown.
		StakedAt:   w.StakedAt.Value,
		DueAt:      w.Due.Value,
		CreatedAt:  w.CreatedAt.Value,
		UnstakedAt: w.UnstakedAt.Value,
	}

	switch w.Restake.Value {
	case "", "0", "1":
		s.Restake = types.RestakeFlag(w.Restake.Value)
	default:
		d.fail("restake", fmt.Errorf("expected \"0\" or \"1\", got %q", w.Restake.Value))
	}

	if s.PenaltyPercent.GreaterThan(hundred) {
		d.fail("penalty", fmt.Errorf("percentage %s out of range [0,100]", s.PenaltyPercent))
	}

	if d.err != nil {
		return types.StakeRecord{}, d.err
	}
	return s, nil
}

type wirePlan struct {
	ID             flexString `json:"id"`
	Name           flexString `json:"name"`
	MinAmount      flexString `json:"min_amount"`
	MaxAmount      flexString `json:"max_amount"`
	DPY            flexString `json:"dpy"`
	LockPeriodDays flexString `json:"lock_period_days"`
	BonusNote      flexString `json:"bonus_note"`
	Icon           flexString `json:"icon"`
	Color          flexString `json:"color"`
	Description    flexString `json:"description"`
}

func (w wirePlan) plan(endpoint string, index int) (types.Plan, error) {
	d := &fieldDecoder{endpoint: endpoint, index: index}

	p := types.Plan{
		ID:                d.text("id", w.ID, true),
		Name:              d.text("name", w.Name, true),
		MinAmount:         d.amount("min_amount", w.MinAmount, false),
		MaxAmount:         d.amount("max_amount", w.MaxAmount, false),
		DailyYieldPercent: d.amount("dpy", w.DPY, true),
		LockPeriodDays:    d.count("lock_period_days", w.LockPeriodDays, false),
		BonusNote:         w.BonusNote.Value,
		Icon:              w.Icon.Value,
		Color:             w.Color.Value,
		Description:       w.Description.Value,
	}
	if p.LockPeriodDays == 0 {
		p.LockPeriodDays = types.DefaultLockPeriodDays
	}

	if d.err != nil {
		return types.Plan{}, d.err
	}
	return p, nil
}

type wireUser struct {
	ID               flexString `json:"id"`
	Name             flexString `json:"name"`
	Email            flexString `json:"email"`
	Country          flexString `json:"country"`
	Phone            flexString `json:"phone"`
	Earnings         flexString `json:"earnings"`
	ReferralCode     flexString `json:"referral_code"`
	TotalReferrals   flexString `json:"total_referrals"`
	ActiveReferrals  flexString `json:"active_referrals"`
	ReferralRewards  flexString `json:"referral_rewards"`
	TotalStaked      flexString `json:"total_staked"`
	TotalRewards     flexString `json:"total_rewards"`
	ActiveStakeCount flexString `json:"active_stake_count"`
	DailyRewards     flexString `json:"daily_rewards"`
}

func (w wireUser) user(endpoint string) (*types.User, error) {
	d := &fieldDecoder{endpoint: endpoint, index: -1}

	u := &types.User{
		ID:               d.text("id", w.ID, true),
		Name:             w.Name.Value,
		Email:            w.Email.Value,
		Country:          w.Country.Value,
		Phone:            w.Phone.Value,
		Earnings:         d.amount("earnings", w.Earnings, false),
		ReferralCode:     w.ReferralCode.Value,
		TotalReferrals:   d.count("total_referrals", w.TotalReferrals, false),
		ActiveReferrals:  d.count("active_referrals", w.ActiveReferrals, false),
		ReferralRewards:  d.amount("referral_rewards", w.ReferralRewards, false),
		TotalStaked:      d.amount("total_staked", w.TotalStaked, false),
		TotalRewards:     d.amount("total_rewards", w.TotalRewards, false),
		ActiveStakeCount: d.count("active_stake_count", w.ActiveStakeCount, false),
		DailyRewards:     d.amount("daily_rewards", w.DailyRewards, false),
	}

	if d.err != nil {
		return nil, d.err
	}
	return u, nil
}

type listStakesResponse struct {
	Stakes []wireStake `json:"stakes"`
}

type depositResponse struct {
	DepositAddress flexString `json:"deposit_address"`
}

type loginResponse struct {
	Token flexString `json:"token"`
	User  *struct {
		ID       flexString `json:"id"`
		Email    flexString `json:"email"`
		FullName flexString `json:"full_name"`
		Name     flexString `json:"name"`
	} `json:"user"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Request bodies. The session token always travels in the body.

type tokenBody struct {
	Token string `json:"token"`
}

type stakeBody struct {
	Token  string `json:"token"`
	PlanID string `json:"plan_id"`
}

type unstakeBody struct {
	Token         string `json:"token"`
	StakeID       string `json:"stake_id"`
	WalletAddress string `json:"wallet_address"`
	UnstakeAmount string `json:"unstake_amount"`
}

type restakeBody struct {
	Token   string `json:"token"`
	StakeID string `json:"stake_id"`
}

type withdrawBody struct {
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	EthAddress string `json:"eth_address"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
