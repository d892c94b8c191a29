package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/dashboard"
	"github.com/chukwumela909/project-bolt/internal/logging"
	"github.com/chukwumela909/project-bolt/internal/metrics"
)

var (
	dashboardWatch       bool
	dashboardInterval    time.Duration
	dashboardMetricsAddr string
)

func NewDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash", "status"},
		Short:   "Show the staking dashboard",
		Long: `Display account totals, active stakes and referral earnings.

With --watch the dashboard refreshes on an interval until Ctrl+C.
Totals are shown as reported by the server; USD values use the live
ETH price or the configured fallback when the price lookup fails.`,
		RunE: runDashboard,
	}

	cmd.Flags().BoolVarP(&dashboardWatch, "watch", "w", false, "Keep refreshing until interrupted")
	cmd.Flags().DurationVarP(&dashboardInterval, "interval", "i", 0, "Refresh interval in watch mode (default from config)")
	cmd.Flags().StringVar(&dashboardMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address in watch mode")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	app := NewAppOrDie(ctx)
	defer app.Close()

	if err := app.RequireLogin(); err != nil {
		return err
	}

	if dashboardWatch {
		return watchDashboard(ctx, cmd.OutOrStdout(), app)
	}

	var refreshErr error
	_ = WithSpinner("Loading dashboard...", func() error {
		refreshErr = app.Dashboard.Refresh(ctx)
		return nil
	})
	if refreshErr != nil && app.Dashboard.View().Account == nil {
		return fmt.Errorf("failed to load dashboard: %w", refreshErr)
	}
	if refreshErr != nil {
		Warning("Some data could not be refreshed: " + refreshErr.Error())
	}

	return writeDashboard(cmd.OutOrStdout(), app.Dashboard.View())
}

func writeDashboard(w io.Writer, v *dashboard.View) error {
	if jsonOutput() {
		return printJSON(w, dashboardJSON(v))
	}
	renderDashboard(w, v)
	return nil
}

func watchDashboard(ctx context.Context, w io.Writer, app *App) error {
	interval := dashboardInterval
	if interval <= 0 {
		interval = app.Config.Dashboard.RefreshInterval()
	}
	addr := dashboardMetricsAddr
	if addr == "" {
		addr = app.Config.Dashboard.MetricsAddr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr != "" {
		srv := serveMetrics(addr, app.Metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		Info("Serving metrics on http://" + addr + "/metrics")
	}

	var mu sync.Mutex
	render := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if !jsonOutput() {
			clearScreen(w)
		}
		if werr := writeDashboard(w, app.Dashboard.View()); werr != nil {
			logging.Warn("failed to render dashboard", logging.Err(werr), logging.Component("cli"))
		}
		if err != nil {
			Warning("Refresh failed: " + err.Error())
		}
		if !jsonOutput() {
			fmt.Fprintln(w, Hint(fmt.Sprintf("Refreshing every %s. Press Ctrl+C to exit.", interval)))
		}
	}

	refresher := dashboard.NewRefresher(app.Dashboard, interval, render)
	if err := refresher.Start(ctx); err != nil {
		return err
	}
	defer refresher.Stop()

	<-ctx.Done()
	if !jsonOutput() {
		fmt.Fprintln(w, "\nExiting dashboard...")
	}
	return nil
}

func serveMetrics(addr string, m *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics server failed", logging.Err(err), logging.Component("cli"))
		}
	}()
	return srv
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}
