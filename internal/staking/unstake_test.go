package staking

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/chukwumela909/project-bolt/pkg/types"
)

const validAddr = "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name  string
		addr  string
		valid bool
	}{
		{"mixed case 40 hex", validAddr, true},
		{"lowercase", strings.ToLower(validAddr), true},
		{"zero address", "0x" + strings.Repeat("0", 40), true},
		{"39 hex", validAddr[:len(validAddr)-1], false},
		{"41 hex", validAddr + "a", false},
		{"missing prefix", validAddr[2:], false},
		{"uppercase prefix", "0X" + validAddr[2:], false},
		{"non hex character", "0x" + strings.Repeat("g", 40), false},
		{"empty", "", false},
		{"surrounding space", " " + validAddr, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.valid && err != nil {
				t.Errorf("expected %q to be accepted, got %v", tt.addr, err)
			}
			if !tt.valid {
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("expected ErrInvalidAddress for %q, got %v", tt.addr, err)
				}
				if !IsValidationError(err) {
					t.Errorf("expected ValidationError for %q", tt.addr)
				}
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	lower := strings.ToLower(validAddr)
	got, err := NormalizeAddress(lower)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.EqualFold(got, lower) {
		t.Errorf("normalized address %s does not match %s", got, lower)
	}
	if !strings.HasPrefix(got, "0x") {
		t.Errorf("expected 0x prefix, got %s", got)
	}

	if _, err := NormalizeAddress("0x1234"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"0.5", true},
		{" 1.25 ", true},
		{"10", true},
		{"0", false},
		{"0.000", false},
		{"-1", false},
		{"", false},
		{"abc", false},
		{"1,5", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseAmount(tt.raw)
			if tt.valid && err != nil {
				t.Errorf("expected %q to parse, got %v", tt.raw, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("expected ErrInvalidAmount for %q, got %v", tt.raw, err)
			}
		})
	}
}

func TestQuoteUnstake_Scenario(t *testing.T) {
	q, err := QuoteUnstake(UnstakeInput{
		Principal:      dec(t, "1.0"),
		Earnings:       dec(t, "0.05"),
		PenaltyPercent: dec(t, "10"),
		Requested:      dec(t, "0.5"),
		Destination:    validAddr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"penalty", q.Penalty, "0.05"},
		{"fee", q.Fee, "0.025"},
		{"net", q.Net, "0.425"},
		{"withdrawable", q.Withdrawable, "1.05"},
		{"fee percent", q.FeePercent, "5"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(t, c.want)) {
			t.Errorf("%s: got %s, want %s", c.name, c.got, c.want)
		}
	}
	if q.ExceedsBalance {
		t.Error("0.5 of 1.05 should not exceed balance")
	}
}

func TestQuoteUnstake_NetIdentity(t *testing.T) {
	amounts := []string{"0.5", "0.05", "1", "3.333333", "20", "0.000000000000000001", "123.456789"}
	penalties := []string{"0", "2.5", "10", "25", "33.3"}

	for _, a := range amounts {
		for _, p := range penalties {
			requested := dec(t, a)
			pct := dec(t, p)

			penalty, fee, net := Breakdown(requested, pct, decimal.NewFromInt(FeePercent))

			factor := decimal.NewFromInt(1).
				Sub(pct.Shift(-2)).
				Sub(decimal.NewFromInt(FeePercent).Shift(-2))
			want := requested.Mul(factor)
			if !net.Equal(want) {
				t.Errorf("amount=%s penalty=%s: net %s, want %s", a, p, net, want)
			}
			if !penalty.Add(fee).Add(net).Equal(requested) {
				t.Errorf("amount=%s penalty=%s: parts do not sum to requested", a, p)
			}
		}
	}
}

func TestQuoteUnstake_ExceedsBalanceIsWarning(t *testing.T) {
	q, err := QuoteUnstake(UnstakeInput{
		Principal:      dec(t, "1"),
		Earnings:       dec(t, "0.05"),
		PenaltyPercent: dec(t, "10"),
		Requested:      dec(t, "2"),
		Destination:    validAddr,
	})
	if err != nil {
		t.Fatalf("over-balance quote should not fail: %v", err)
	}
	if !q.ExceedsBalance {
		t.Error("expected ExceedsBalance to be set")
	}
}

func TestQuoteUnstake_Rejects(t *testing.T) {
	base := UnstakeInput{
		Principal:      dec(t, "1"),
		PenaltyPercent: dec(t, "10"),
		Requested:      dec(t, "0.5"),
		Destination:    validAddr,
	}

	zero := base
	zero.Requested = decimal.Zero
	if _, err := QuoteUnstake(zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for zero amount, got %v", err)
	}

	negative := base
	negative.Requested = dec(t, "-0.1")
	if _, err := QuoteUnstake(negative); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for negative amount, got %v", err)
	}

	badAddr := base
	badAddr.Destination = validAddr[:len(validAddr)-1]
	if _, err := QuoteUnstake(badAddr); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestQuoteForStake(t *testing.T) {
	s := types.StakeRecord{
		ID:             "s1",
		Principal:      dec(t, "2"),
		Earnings:       dec(t, "0.1"),
		PenaltyPercent: dec(t, "20"),
	}
	q, err := QuoteForStake(s, dec(t, "1"), validAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Penalty.Equal(dec(t, "0.2")) || !q.Net.Equal(dec(t, "0.75")) {
		t.Errorf("unexpected quote: penalty=%s net=%s", q.Penalty, q.Net)
	}
	if !q.Withdrawable.Equal(dec(t, "2.1")) {
		t.Errorf("withdrawable: got %s, want 2.1", q.Withdrawable)
	}
}

func TestValidateWithdrawal(t *testing.T) {
	available := dec(t, "0.3")

	if err := ValidateWithdrawal(dec(t, "0.3"), available, validAddr); err != nil {
		t.Errorf("withdrawing full balance should pass: %v", err)
	}
	if err := ValidateWithdrawal(dec(t, "0.31"), available, validAddr); !errors.Is(err, ErrExceedsAvailable) {
		t.Errorf("expected ErrExceedsAvailable, got %v", err)
	}
	if err := ValidateWithdrawal(decimal.Zero, available, validAddr); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ValidateWithdrawal(dec(t, "0.1"), available, "0x12"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}
