package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/rsv/internal/floorplan"
	"github.com/marcus/rsv/internal/inbox"
	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/notify"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/push"
	"github.com/marcus/rsv/internal/store"
	"github.com/marcus/rsv/internal/waitlist"
	"github.com/marcus/rsv/internal/webhook"
	"github.com/marcus/rsv/pkg/monitor"
	"github.com/marcus/rsv/pkg/monitor/keymap"
	"github.com/spf13/cobra"
)

// monitorLogFile receives logs while the TUI owns the terminal
const monitorLogFile = "monitor.log"

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"dashboard-tui", "tui"},
	Short:   "Live dashboard of today's reservations, waitlist and notifications",
	Long: `Launch a live-updating dashboard showing:
- Today: the day's reservations, or a name/date filtered list
- Waitlist: parties waiting for a table
- Notifications: new reservations seen while the dashboard runs

Key bindings:
  Tab/1/2/3      Switch panels
  ↑/↓ j/k        Move the cursor
  Enter          Open reservation details
  s              Next status
  e / n          Edit / new reservation
  d              Delete (asks first)
  / f            Filter by name / date, Esc returns to today
  p              Process the waitlist
  a              Mark all notifications read
  m              Floor plan
  r              Reload
  ?              Toggle help
  q              Quit`,
	GroupID: "reservations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		cfg := a.cfg

		logFile, err := os.OpenFile(filepath.Join(cfg.Dir, monitorLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			output.Error("open log: %v", err)
			return err
		}
		defer logFile.Close()
		logger := newLogger(logFile, cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		restaurant := a.sess.RestaurantName
		if restaurant == "" {
			rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
			if rc, err := a.client.GetConfig(rctx); err == nil {
				restaurant = rc.Nombre
			}
			rcancel()
		}

		ib, err := inbox.OpenDriver(cfg.InboxDriver, filepath.Join(cfg.Dir, inbox.FileName))
		if err != nil {
			output.Error("open inbox: %v", err)
			return err
		}
		defer ib.Close()

		opts := notify.Options{
			ToastDuration: cfg.ToastDuration,
			Persist:       ib,
			Logger:        logger,
		}
		if sender := webhook.NewSender(cfg.WebhookURL, cfg.WebhookSecret, func() string { return restaurant }); sender != nil {
			sender.Logger = logger
			opts.Sink = sender
		}
		center, err := notify.New(opts)
		if err != nil {
			output.Error("load inbox: %v", err)
			return err
		}
		defer center.Close()

		changes := monitor.NewSignal()
		st := store.New(a.client, store.Options{Interval: cfg.PollInterval, Logger: logger})
		list := listview.New(a.client, st, center, listview.Options{
			CloseDelay: cfg.CloseDelay,
			Logger:     logger,
			OnChange:   changes.Notify,
		})
		wl := waitlist.New(a.client, center, waitlist.Options{Interval: cfg.WaitlistInterval, Logger: logger})

		zone, _ := cmd.Flags().GetString("zone")
		if zone == "" {
			zone = cfg.Zone
		}
		plan := floorplan.New(a.client, floorplan.Options{
			Zone:   strings.ToUpper(zone),
			Admin:  true,
			Logger: logger,
		})

		go st.Run(ctx)
		go wl.Run(ctx)
		go center.Follow(ctx, st)

		if cfg.PushURL != "" {
			listener := push.New(push.Options{
				URL:            cfg.PushURL,
				Token:          a.sess.Token,
				OnReservations: st.Nudge,
				OnWaitlist: func() {
					if err := wl.Reload(ctx); err != nil {
						logger.Debug("waitlist reload after push", "err", err)
					}
				},
				Logger: logger,
			})
			go func() {
				if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("push listener stopped", "err", err)
				}
			}()
		}

		km := keymap.NewRegistry()
		keymap.RegisterDefaults(km)
		kcfg, err := keymap.LoadConfig(keymap.ConfigPath(cfg.Dir))
		if err != nil {
			output.Warning("ignoring %s: %v", keymap.FileName, err)
		} else {
			for _, s := range keymap.ApplyConfig(km, kcfg) {
				output.Warning("%s: skipping %s", keymap.FileName, s)
			}
		}

		model := monitor.NewModel(ctx, monitor.Deps{
			Store:           st,
			List:            list,
			Waitlist:        wl,
			Center:          center,
			Plan:            plan,
			Metrics:         a.client,
			Changes:         changes,
			Restaurant:      restaurant,
			MetricsInterval: cfg.MetricsInterval,
			Keymap:          km,
		})
		defer model.Close()

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("error running monitor: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().String("zone", "", "Floor plan zone (default from config)")
}
