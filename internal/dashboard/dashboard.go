// Package dashboard assembles the account view from the backend stores and
// keeps it fresh.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/metrics"
	"github.com/chukwumela909/project-bolt/internal/pricefeed"
	"github.com/chukwumela909/project-bolt/internal/recorder"
	"github.com/chukwumela909/project-bolt/internal/staking"
	"github.com/chukwumela909/project-bolt/internal/store"
	"github.com/chukwumela909/project-bolt/internal/util"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// ErrRefreshInProgress is returned when a refresh is requested while
// another one is still running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Backend is the read side of the API client.
type Backend interface {
	UserData(ctx context.Context) (*types.User, error)
	ListStakes(ctx context.Context) ([]types.StakeRecord, error)
	Plans(ctx context.Context) ([]types.Plan, error)
}

// PriceSource yields the ETH/USD quote. It never fails.
type PriceSource interface {
	Quote(ctx context.Context) pricefeed.Quote
}

// Options configures a Dashboard.
type Options struct {
	ReferralBaseURL string
	Recorder        recorder.Recorder
	Metrics         *metrics.Collector
}

// Dashboard owns the user, stake and plan stores.
type Dashboard struct {
	backend  Backend
	prices   PriceSource
	stores   *store.Stores
	recorder recorder.Recorder
	metrics  *metrics.Collector
	referral string

	refreshing sync.Mutex

	mu    sync.RWMutex
	price pricefeed.Quote

	now func() time.Time
}

// New creates a dashboard with empty stores.
func New(backend Backend, prices PriceSource, opts Options) *Dashboard {
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Dashboard{
		backend:  backend,
		prices:   prices,
		stores:   store.New(),
		recorder: rec,
		metrics:  opts.Metrics,
		referral: opts.ReferralBaseURL,
		now:      time.Now,
	}
}

// Stores exposes the underlying stores.
func (d *Dashboard) Stores() *store.Stores {
	return d.stores
}

// Catalog returns the backend plan catalog merged over the built-in one.
func (d *Dashboard) Catalog() *staking.Catalog {
	plans, loaded := d.stores.Plans.Get()
	if !loaded {
		return staking.DefaultCatalog()
	}
	return staking.NewCatalog(plans).Merge(staking.DefaultCatalog())
}

// Price returns the quote from the last refresh.
func (d *Dashboard) Price() pricefeed.Quote {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.price
}

// Refresh reloads user data, stakes and the price concurrently. Plans are
// fetched once per session. At most one refresh runs at a time; a
// concurrent call returns ErrRefreshInProgress.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if !d.refreshing.TryLock() {
		return ErrRefreshInProgress
	}
	defer d.refreshing.Unlock()

	var (
		wg       sync.WaitGroup
		userErr  error
		stakeErr error
		quote    pricefeed.Quote
	)
	util.SafeGoGroup(&wg, "refresh-user", func() {
		userErr = d.stores.User.Refresh(ctx, d.backend.UserData)
	})
	util.SafeGoGroup(&wg, "refresh-stakes", func() {
		stakeErr = d.stores.Stakes.Refresh(ctx, d.backend.ListStakes)
	})
	util.SafeGoGroup(&wg, "refresh-plans", func() {
		if err := d.stores.Plans.LoadOnce(ctx, d.backend.Plans); err != nil {
			logging.Warn("plan catalog unavailable, using built-in plans",
				logging.Err(err), logging.Component("dashboard"))
		}
	})
	util.SafeGoGroup(&wg, "refresh-price", func() {
		quote = d.prices.Quote(ctx)
	})
	wg.Wait()

	d.mu.Lock()
	d.price = quote
	d.mu.Unlock()

	err := errors.Join(userErr, stakeErr)
	view := d.View()
	d.metrics.ObserveRefresh(err, view.Summary.ActiveStakes, d.now())
	if err != nil {
		logging.Warn("refresh failed", logging.Err(err), logging.Component("dashboard"))
		return err
	}

	d.recordSnapshot(ctx, view)
	return nil
}

func (d *Dashboard) recordSnapshot(ctx context.Context, v *View) {
	err := d.recorder.RecordSnapshot(ctx, &recorder.Snapshot{
		At:              d.now(),
		TotalStaked:     v.Summary.TotalStaked,
		TotalRewards:    v.Summary.TotalRewards,
		DailyRewards:    v.Summary.DailyRewards,
		ReferralRewards: v.Summary.ReferralRewards,
		ActiveStakes:    v.Summary.ActiveStakes,
		ETHUSD:          v.Price.USD,
		PriceFallback:   v.Price.Fallback,
	})
	if err != nil {
		logging.Warn("failed to record snapshot", logging.Err(err), logging.Component("dashboard"))
		return
	}
	d.metrics.ObserveSnapshot()
}

// View builds the current view from the stores.
func (d *Dashboard) View() *View {
	user, _ := d.stores.User.Get()
	stakes := d.stores.Stakes.State()
	return BuildView(Inputs{
		User:            user,
		Stakes:          stakes.Value,
		Catalog:         d.Catalog(),
		Price:           d.Price(),
		ReferralBaseURL: d.referral,
		UpdatedAt:       stakes.UpdatedAt,
	}, d.now())
}

// Stake looks up a stake by id in the last fetched list.
func (d *Dashboard) Stake(id string) (types.StakeRecord, bool) {
	stakes, _ := d.stores.Stakes.Get()
	for _, s := range stakes {
		if s.ID == id {
			return s, true
		}
	}
	return types.StakeRecord{}, false
}
