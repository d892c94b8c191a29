// Package coordinator runs the dashboard's mutating actions. Each action
// kind has its own in-flight flag and error slot; a second invocation of a
// kind that is still pending is ignored rather than queued.
package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/chukwumela909/project-bolt/internal/client"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/metrics"
	"github.com/chukwumela909/project-bolt/pkg/types"
)

// Kind identifies an action.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindUnstake  Kind = "unstake"
	KindRestake  Kind = "restake"
	KindWithdraw Kind = "withdraw"
)

// Kinds lists every action kind.
var Kinds = []Kind{KindDeposit, KindUnstake, KindRestake, KindWithdraw}

// Generic messages used when the backend does not supply one.
var fallbackMessages = map[Kind]string{
	KindDeposit:  "Failed to generate deposit address",
	KindUnstake:  "Failed to unstake",
	KindRestake:  "Failed to restake",
	KindWithdraw: "Failed to withdraw",
}

// Outcome is the result of one invocation.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	// OutcomeInFlight means the call was ignored because the same kind
	// was already pending.
	OutcomeInFlight
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeInFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

// Backend is the subset of the API client the coordinator drives.
type Backend interface {
	IssueDepositAddress(ctx context.Context, planID string) (string, error)
	Unstake(ctx context.Context, req types.UnstakeRequest) error
	Restake(ctx context.Context, stakeID string) error
	Withdraw(ctx context.Context, req types.WithdrawRequest) error
}

// Notification is sent once per completed action.
type Notification struct {
	Kind    Kind
	Outcome Outcome
	Target  string
	Message string
	Err     error
}

// Notifier receives action notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Snapshot is the observable state of one kind.
type Snapshot struct {
	Pending bool
	Err     error
	Message string
}

type slot struct {
	pending bool
	err     error
	message string
}

// Coordinator serializes actions per kind.
type Coordinator struct {
	backend  Backend
	notifier Notifier
	metrics  *metrics.Collector
	actor    string

	mu             sync.Mutex
	slots          map[Kind]*slot
	depositAddress string
}

// New creates a coordinator. notifier and m may be nil.
func New(backend Backend, notifier Notifier, m *metrics.Collector) *Coordinator {
	slots := make(map[Kind]*slot, len(Kinds))
	for _, k := range Kinds {
		slots[k] = &slot{}
	}
	return &Coordinator{
		backend:  backend,
		notifier: notifier,
		metrics:  m,
		slots:    slots,
	}
}

// SetActor sets the account name recorded in audit events.
func (c *Coordinator) SetActor(actor string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = actor
}

// Deposit requests a deposit address for planID.
func (c *Coordinator) Deposit(ctx context.Context, planID string) Outcome {
	return c.run(ctx, KindDeposit, planID, func(ctx context.Context) error {
		addr, err := c.backend.IssueDepositAddress(ctx, planID)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.depositAddress = addr
		c.mu.Unlock()
		return nil
	})
}

// Unstake submits an unstake request. The request is expected to have
// passed staking.QuoteUnstake already.
func (c *Coordinator) Unstake(ctx context.Context, req types.UnstakeRequest) Outcome {
	return c.run(ctx, KindUnstake, req.StakeID, func(ctx context.Context) error {
		return c.backend.Unstake(ctx, req)
	})
}

// Restake rolls stakeID into a new term.
func (c *Coordinator) Restake(ctx context.Context, stakeID string) Outcome {
	return c.run(ctx, KindRestake, stakeID, func(ctx context.Context) error {
		return c.backend.Restake(ctx, stakeID)
	})
}

// Withdraw requests a payout of referral earnings.
func (c *Coordinator) Withdraw(ctx context.Context, req types.WithdrawRequest) Outcome {
	return c.run(ctx, KindWithdraw, req.EthAddress, func(ctx context.Context) error {
		return c.backend.Withdraw(ctx, req)
	})
}

// Snapshot returns the state of kind.
func (c *Coordinator) Snapshot(kind Kind) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[kind]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{Pending: s.pending, Err: s.err, Message: s.message}
}

// DepositAddress returns the last issued deposit address.
func (c *Coordinator) DepositAddress() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depositAddress
}

func (c *Coordinator) run(ctx context.Context, kind Kind, target string, fn func(context.Context) error) Outcome {
	c.mu.Lock()
	s := c.slots[kind]
	if s.pending {
		c.mu.Unlock()
		logging.Debug("action already in flight", logging.Kind(string(kind)))
		return OutcomeInFlight
	}
	s.pending = true
	s.err = nil
	s.message = ""
	actor := c.actor
	c.mu.Unlock()

	err := c.call(ctx, fn)

	outcome := OutcomeSucceeded
	message := ""
	if err != nil {
		outcome = OutcomeFailed
		message = failureMessage(kind, err)
	}

	c.mu.Lock()
	s.pending = false
	s.err = err
	s.message = message
	c.mu.Unlock()

	c.record(kind, outcome, actor, target, message, err)
	if c.notifier != nil {
		c.notifier.Notify(Notification{
			Kind:    kind,
			Outcome: outcome,
			Target:  target,
			Message: message,
			Err:     err,
		})
	}
	return outcome
}

// call runs fn and turns a panic into an error so it cannot escape.
func (c *Coordinator) call(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic in action", "panic", r, logging.Component("coordinator"))
			err = errors.New("internal error")
		}
	}()
	return fn(ctx)
}

func (c *Coordinator) record(kind Kind, outcome Outcome, actor, target, message string, err error) {
	result := "success"
	if outcome != OutcomeSucceeded {
		result = "failure"
	}
	logging.Audit(logging.AuditEvent{
		Operation: string(kind),
		Actor:     actor,
		Target:    target,
		Result:    result,
		Details:   message,
	})
	if err != nil {
		logging.Warn("action failed",
			logging.Kind(string(kind)),
			logging.Err(err),
			logging.Component("coordinator"))
	}
	c.metrics.ObserveAction(string(kind), outcome.String())
}

// failureMessage prefers the backend's own message, then a specific
// message for a missing session, then the generic text for kind.
func failureMessage(kind Kind, err error) string {
	if msg := client.Message(err); msg != "" {
		return msg
	}
	if errors.Is(err, client.ErrNotAuthenticated) {
		return "Not logged in"
	}
	return fallbackMessages[kind]
}
