package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/dashboard"
	"github.com/chukwumela909/project-bolt/internal/session"
	"github.com/chukwumela909/project-bolt/internal/staking"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

const testAddr = "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"

func TestCommandUse(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewLoginCmd(), "login", []string{"email", "password-stdin"}},
		{NewLogoutCmd(), "logout", nil},
		{NewDashboardCmd(), "dashboard", []string{"watch", "interval", "metrics-addr"}},
		{NewStakesCmd(), "stakes", []string{"all", "status"}},
		{NewPlansCmd(), "plans", nil},
		{NewDepositCmd(), "deposit <plan-id>", nil},
		{NewUnstakeCmd(), "unstake <stake-id>", []string{"amount", "address", "yes"}},
		{NewRestakeCmd(), "restake <stake-id>", []string{"yes"}},
		{NewReferralCmd(), "referral", nil},
		{NewWithdrawCmd(), "withdraw", []string{"amount", "address", "yes"}},
		{NewHistoryCmd(), "history", []string{"limit", "actions", "prune-days"}},
		{NewVersionCmd(), "version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			if tt.cmd.Use != tt.use {
				t.Errorf("Use mismatch: got %s, want %s", tt.cmd.Use, tt.use)
			}
			for _, f := range tt.flags {
				if tt.cmd.Flags().Lookup(f) == nil {
					t.Errorf("--%s flag should exist", f)
				}
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"12.5", "$12.50"},
		{"1234.567", "$1,234.57"},
		{"1234567", "$1,234,567.00"},
		{"-2500", "$-2,500.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatUSD(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatETH(t *testing.T) {
	if got := FormatETH(decimal.RequireFromString("1.23456")); got != "1.2346 ETH" {
		t.Errorf("unexpected %q", got)
	}
	if got := FormatETH(decimal.Zero); got != "0.0000 ETH" {
		t.Errorf("unexpected %q", got)
	}
}

func TestFormatAddress(t *testing.T) {
	if got := FormatAddress(testAddr); got != "0xABCD...EF01" {
		t.Errorf("unexpected %q", got)
	}
	if got := FormatAddress("0x1234"); got != "0x1234" {
		t.Errorf("short address should be unchanged, got %q", got)
	}
}

func TestCountdownCell(t *testing.T) {
	tests := []struct {
		name string
		view dashboard.StakeView
		want string
	}{
		{"inactive", dashboard.StakeView{}, "-"},
		{"bad date", dashboard.StakeView{Active: true, CountdownErr: staking.ErrMalformedTimestamp}, "invalid date"},
		{"matured", dashboard.StakeView{Active: true, Countdown: staking.Countdown{Matured: true}}, "matured"},
		{"running", dashboard.StakeView{Active: true, Countdown: staking.Countdown{DaysRemaining: 42}}, "42 days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countdownCell(tt.view); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterStakes(t *testing.T) {
	v := &dashboard.View{Stakes: []dashboard.StakeView{
		{Stake: types.StakeRecord{ID: "1", Status: types.StakeStatusStaked}, Active: true},
		{Stake: types.StakeRecord{ID: "2", Status: types.StakeStatusUnstaked}},
		{Stake: types.StakeRecord{ID: "3", Status: types.StakeStatusPending}},
	}}

	if got := filterStakes(v, false, ""); len(got) != 1 || got[0].Stake.ID != "1" {
		t.Errorf("default should list active stakes only, got %v", got)
	}
	if got := filterStakes(v, true, ""); len(got) != 3 {
		t.Errorf("--all should list every stake, got %d", len(got))
	}
	if got := filterStakes(v, false, "pending"); len(got) != 1 || got[0].Stake.ID != "3" {
		t.Errorf("--status should filter, got %v", got)
	}
}

// backend is a scripted stand-in for the staking API.
type backend struct {
	mu    sync.Mutex
	calls map[string]int
	last  map[string]map[string]string
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *backend) body(path string) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last[path]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]string
	_ = json.Unmarshal(raw, &body)

	b.mu.Lock()
	b.calls[r.URL.Path]++
	b.last[r.URL.Path] = body
	b.mu.Unlock()

	switch r.URL.Path {
	case "/price":
		w.Write([]byte(`{"ethereum":{"usd":2000}}`))
	case "/auth/user-data":
		w.Write([]byte(`{"id":"7","name":"Ada","email":"ada@example.com","referral_code":"ADA1",
			"referral_rewards":"0.3","total_staked":"1.5","total_rewards":"0.05","daily_rewards":"0.02",
			"total_referrals":"3","active_referrals":"1"}`))
	case "/investment/list-stakes":
		w.Write([]byte(`{"stakes":[
			{"id":"11","plan_id":"045a88bc-e647-11ef-8679-04421a23dd01","amount":"1.5","earnings":"0.05",
			 "status":"staked","lock_period_days":"180","penalty":"10","staked_at":"2024-01-01 10:00:00","restake":"0"},
			{"id":"12","plan_id":"gone","amount":"2","status":"unstaked","lock_period_days":"180","staked_at":"2023-01-01"}
		]}`))
	case "/investment/plans":
		w.Write([]byte(`[]`))
	case "/investment/stake":
		w.Write([]byte(`{"deposit_address":"0x1111111111111111111111111111111111111111"}`))
	case "/investment/unstake", "/investment/restake", "/withdrawal/create":
		w.Write([]byte(`{"message":"ok"}`))
	default:
		http.NotFound(w, r)
	}
}

// setupCLI points the command globals at a fake backend with a session
// token in the environment.
func setupCLI(t *testing.T) *backend {
	t.Helper()
	b := &backend{calls: map[string]int{}, last: map[string]map[string]string{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `api:
  base_url: ` + srv.URL + `
  path_suffix: ""
  rate_limit_per_sec: 0
  read_retries: 0
price_feed:
  url: ` + srv.URL + `/price
history:
  enabled: false
session:
  backend: memory
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(session.EnvToken, "sess-1")
	t.Setenv("STAKEDASH_API_URL", "")
	t.Setenv("STAKEDASH_API_KEY", "")

	prevPath, prevOut := ConfigPath, OutputFormat
	ConfigPath = cfgPath
	OutputFormat = "json"
	loadedConfig = nil
	t.Cleanup(func() {
		ConfigPath, OutputFormat = prevPath, prevOut
		loadedConfig = nil
	})
	return b
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStakesCmd_JSON(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, NewStakesCmd(), "--all")
	if err != nil {
		t.Fatalf("stakes failed: %v", err)
	}

	var stakes []jsonStake
	if err := json.Unmarshal([]byte(out), &stakes); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(stakes) != 2 {
		t.Fatalf("expected 2 stakes, got %d", len(stakes))
	}
	if stakes[0].Plan != "Core Vault" {
		t.Errorf("plan name should come from the catalog, got %q", stakes[0].Plan)
	}
	if stakes[1].Plan != "gone" {
		t.Errorf("unknown plan should fall back to its id, got %q", stakes[1].Plan)
	}
	if !stakes[0].AmountUSD.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected $3000, got %s", stakes[0].AmountUSD)
	}
	if stakes[0].DaysRemaining == nil {
		t.Error("active stake should carry a countdown")
	}
}

func TestDepositCmd(t *testing.T) {
	b := setupCLI(t)

	out, err := execute(t, NewDepositCmd(), "045a88bc-e647-11ef-8679-04421a23dd01")
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	var res jsonActionResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Outcome != "succeeded" {
		t.Errorf("expected succeeded, got %s", res.Outcome)
	}
	if res.DepositAddress != "0x1111111111111111111111111111111111111111" {
		t.Errorf("unexpected address %q", res.DepositAddress)
	}
	if got := b.body("/investment/stake")["plan_id"]; got != "045a88bc-e647-11ef-8679-04421a23dd01" {
		t.Errorf("unexpected plan_id %q", got)
	}
}

func TestDepositCmd_UnknownPlan(t *testing.T) {
	b := setupCLI(t)

	if _, err := execute(t, NewDepositCmd(), "no-such-plan"); err == nil {
		t.Fatal("expected an error for an unknown plan")
	}
	if n := b.count("/investment/stake"); n != 0 {
		t.Errorf("no deposit request expected, got %d", n)
	}
}

func TestUnstakeCmd(t *testing.T) {
	b := setupCLI(t)

	_, err := execute(t, NewUnstakeCmd(), "11", "--amount", "0.5", "--address", testAddr, "--yes")
	if err != nil {
		t.Fatalf("unstake failed: %v", err)
	}

	body := b.body("/investment/unstake")
	if body["stake_id"] != "11" {
		t.Errorf("unexpected stake_id %q", body["stake_id"])
	}
	if !strings.EqualFold(body["wallet_address"], testAddr) {
		t.Errorf("unexpected wallet_address %q", body["wallet_address"])
	}
}

func TestUnstakeCmd_RejectsBeforeRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad address", []string{"11", "--amount", "0.5", "--address", testAddr[:len(testAddr)-1], "--yes"}},
		{"zero amount", []string{"11", "--amount", "0", "--address", testAddr, "--yes"}},
		{"inactive stake", []string{"12", "--amount", "0.5", "--address", testAddr, "--yes"}},
		{"unknown stake", []string{"99", "--amount", "0.5", "--address", testAddr, "--yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupCLI(t)
			unstakeAmount, unstakeAddress, unstakeYes = "", "", false

			if _, err := execute(t, NewUnstakeCmd(), tt.args...); err == nil {
				t.Fatal("expected an error")
			}
			if n := b.count("/investment/unstake"); n != 0 {
				t.Errorf("no unstake request expected, got %d", n)
			}
		})
	}
}

func TestWithdrawCmd_ExceedsRewards(t *testing.T) {
	b := setupCLI(t)
	withdrawAmount, withdrawAddress, withdrawYes = "", "", false

	_, err := execute(t, NewWithdrawCmd(), "--amount", "1", "--address", testAddr, "--yes")
	if !errors.Is(err, staking.ErrExceedsAvailable) {
		t.Fatalf("expected ErrExceedsAvailable, got %v", err)
	}
	if n := b.count("/withdrawal/create"); n != 0 {
		t.Errorf("no withdrawal request expected, got %d", n)
	}
}

func TestWithdrawCmd(t *testing.T) {
	b := setupCLI(t)
	withdrawAmount, withdrawAddress, withdrawYes = "", "", false

	if _, err := execute(t, NewWithdrawCmd(), "--amount", "0.3", "--address", testAddr, "--yes"); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	body := b.body("/withdrawal/create")
	if body["amount"] != "0.3" || body["eth_address"] != testAddr {
		t.Errorf("unexpected body %v", body)
	}
}

func TestRestakeCmd_NeedsConfirmation(t *testing.T) {
	b := setupCLI(t)
	restakeYes = false

	if _, err := execute(t, NewRestakeCmd(), "11"); err == nil {
		t.Fatal("expected a confirmation error without a terminal")
	}
	if n := b.count("/investment/restake"); n != 0 {
		t.Errorf("no restake request expected, got %d", n)
	}
}

func TestDashboardCmd_JSON(t *testing.T) {
	setupCLI(t)
	dashboardWatch = false

	out, err := execute(t, NewDashboardCmd())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}

	var d jsonDashboard
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if d.Summary.ActiveStakes != 1 || len(d.Stakes) != 1 {
		t.Errorf("expected one active stake, got %d / %d", d.Summary.ActiveStakes, len(d.Stakes))
	}
	if !d.Summary.TotalStaked.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("total staked should pass through, got %s", d.Summary.TotalStaked)
	}
	if d.Referral.Code != "ADA1" || !strings.HasSuffix(d.Referral.Link, "?ref=ADA1") {
		t.Errorf("unexpected referral %+v", d.Referral)
	}
	if d.Summary.PriceFallback {
		t.Error("price should come from the feed")
	}
	if time.Since(d.Summary.UpdatedAt) > time.Minute {
		t.Errorf("unexpected updated_at %s", d.Summary.UpdatedAt)
	}
}

func TestNotLoggedIn(t *testing.T) {
	b := setupCLI(t)
	t.Setenv(session.EnvToken, "")

	_, err := execute(t, NewStakesCmd())
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected not logged in error, got %v", err)
	}
	if n := b.count("/investment/list-stakes"); n != 0 {
		t.Errorf("no request expected, got %d", n)
	}
}
