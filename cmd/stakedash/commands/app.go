package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/chukwumela909/project-bolt/internal/client"
	"github.com/chukwumela909/project-bolt/internal/config"
	"github.com/chukwumela909/project-bolt/internal/coordinator"
	"github.com/chukwumela909/project-bolt/internal/dashboard"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/metrics"
	"github.com/chukwumela909/project-bolt/internal/pricefeed"
	"github.com/chukwumela909/project-bolt/internal/recorder"
	"github.com/chukwumela909/project-bolt/internal/session"
)

// App wires the components one command invocation needs.
type App struct {
	Config      *config.Config
	Session     *session.Session
	Client      *client.Client
	Prices      *pricefeed.Feed
	Metrics     *metrics.Collector
	Recorder    recorder.Recorder
	Dashboard   *dashboard.Dashboard
	Coordinator *coordinator.Coordinator
}

// NewApp builds an App from the loaded configuration.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	m := metrics.NewCollector()
	opts := client.OptionsFromConfig(cfg.API)
	opts.Metrics = m
	c := client.New(opts, sess)

	rec, err := recorder.Open(ctx, cfg.History)
	if err != nil {
		// History is optional; the dashboard works without it.
		logging.Warn("history disabled", logging.Err(err), logging.Component("cli"))
		rec = recorder.NewNoopRecorder()
	}

	feed := pricefeed.New(cfg.PriceFeed, m)
	app := &App{
		Config:   cfg,
		Session:  sess,
		Client:   c,
		Prices:   feed,
		Metrics:  m,
		Recorder: rec,
		Dashboard: dashboard.New(c, feed, dashboard.Options{
			ReferralBaseURL: cfg.Dashboard.ReferralBaseURL,
			Recorder:        rec,
			Metrics:         m,
		}),
	}
	app.Coordinator = coordinator.New(c, &cliNotifier{recorder: rec}, m)
	return app, nil
}

// NewAppOrDie builds an App or exits with a styled error.
func NewAppOrDie(ctx context.Context) *App {
	app, err := NewApp(ctx)
	if err != nil {
		Error(err.Error())
		os.Exit(1)
	}
	return app
}

// Close releases the history database.
func (a *App) Close() error {
	return a.Recorder.Close()
}

// RequireLogin fails early when there is no session token.
func (a *App) RequireLogin() error {
	tok, err := a.Session.Token()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if tok == "" {
		return fmt.Errorf("not logged in. Run 'stakedash login' first")
	}
	return nil
}

// cliNotifier prints action results and keeps them in history.
type cliNotifier struct {
	recorder recorder.Recorder
}

func (n *cliNotifier) Notify(note coordinator.Notification) {
	err := n.recorder.RecordAction(context.Background(), &recorder.ActionEvent{
		Kind:    string(note.Kind),
		Outcome: note.Outcome.String(),
		Target:  note.Target,
		Message: note.Message,
	})
	if err != nil {
		logging.Warn("failed to record action", logging.Err(err), logging.Component("cli"))
	}

	if jsonOutput() {
		return
	}
	switch note.Outcome {
	case coordinator.OutcomeSucceeded:
		Success(fmt.Sprintf("%s %s succeeded", actionTitle(note.Kind), note.Target))
	case coordinator.OutcomeFailed:
		Error(note.Message)
	}
}

func actionTitle(k coordinator.Kind) string {
	switch k {
	case coordinator.KindDeposit:
		return "Deposit for plan"
	case coordinator.KindUnstake:
		return "Unstake of"
	case coordinator.KindRestake:
		return "Restake of"
	case coordinator.KindWithdraw:
		return "Withdrawal to"
	default:
		return string(k)
	}
}
