package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/chukwumela909/project-bolt/internal/coordinator"
	"github.com/chukwumela909/project-bolt/internal/dashboard"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/staking"
)

// ErrReported is returned when a command already printed its failure.
var ErrReported = errors.New("failure already reported")

type jsonActionResult struct {
	Action         string `json:"action"`
	Target         string `json:"target"`
	Outcome        string `json:"outcome"`
	Message        string `json:"message,omitempty"`
	DepositAddress string `json:"deposit_address,omitempty"`
}

// finishAction converts a coordinator outcome into the command result.
func finishAction(w io.Writer, app *App, kind coordinator.Kind, target string, outcome coordinator.Outcome) error {
	snap := app.Coordinator.Snapshot(kind)

	if jsonOutput() {
		res := jsonActionResult{
			Action:  string(kind),
			Target:  target,
			Outcome: outcome.String(),
			Message: snap.Message,
		}
		if kind == coordinator.KindDeposit && outcome == coordinator.OutcomeSucceeded {
			res.DepositAddress = app.Coordinator.DepositAddress()
		}
		if err := printJSON(w, res); err != nil {
			return err
		}
	}

	switch outcome {
	case coordinator.OutcomeSucceeded:
		return nil
	case coordinator.OutcomeInFlight:
		if !jsonOutput() {
			Warning("Another " + string(kind) + " request is still in progress")
		}
		return ErrReported
	default:
		return ErrReported
	}
}

// loadAccount refreshes the dashboard and tags audit events with the
// account email.
func loadAccount(ctx context.Context, app *App, spinnerMsg string) (*dashboard.View, error) {
	refreshErr := WithSpinner(spinnerMsg, func() error {
		return app.Dashboard.Refresh(ctx)
	})
	v := app.Dashboard.View()
	if v.Account != nil {
		app.Coordinator.SetActor(v.Account.Email)
	}
	if refreshErr != nil {
		logging.Debug("refresh before action incomplete", logging.Err(refreshErr), logging.Component("cli"))
	}
	return v, refreshErr
}

// confirm asks a yes/no question. Without a terminal it requires --yes.
func confirm(title, description string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !isTTY() {
		return false, fmt.Errorf("confirmation required; pass --yes to run non-interactively")
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Confirm").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// displayAddress shows a validated address in checksummed form so the user
// can compare it against their wallet.
func displayAddress(addr string) string {
	if cs, err := staking.NormalizeAddress(addr); err == nil {
		return cs
	}
	return addr
}

// promptValue fills an empty flag value interactively.
func promptValue(flag, title, placeholder string, value *string, validate func(string) error) error {
	if *value != "" {
		return validate(*value)
	}
	if !isTTY() {
		return fmt.Errorf("--%s is required", flag)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(value).
				Validate(validate),
		),
	).WithTheme(huh.ThemeBase()).Run()
}
