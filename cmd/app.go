package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/config"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/session"
	"github.com/marcus/rsv/internal/validate"
	"golang.org/x/term"
)

// app bundles what every command needs: resolved config, the session and
// an API client carrying the session token.
type app struct {
	cfg    *config.Config
	sess   *session.Session
	client *api.Client
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	sess, err := session.Load(cfg.Dir, cfg.Token)
	if err != nil {
		return nil, err
	}
	client := api.New(cfg.APIURL, sess.Token)
	if cfg.RequestTimeout > 0 {
		client = client.WithTimeout(cfg.RequestTimeout)
	}
	return &app{cfg: cfg, sess: sess, client: client}, nil
}

// requireApp is loadApp for commands that need a valid session
func requireApp() (*app, error) {
	a, err := loadApp()
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}
	if err := a.sess.Require(time.Now()); err != nil {
		output.Error("%v", err)
		return nil, err
	}
	return a, nil
}

// setupLogging configures the default slog logger from RSV_LOG_LEVEL and
// RSV_LOG_FORMAT. Logs go to stderr so they never mix with command output.
func setupLogging() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))
	return nil
}

func newLogger(w io.Writer, levelName, format string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// toastPrinter shows controller toasts as command output
type toastPrinter struct {
	quiet bool
}

func (p toastPrinter) ShowToast(msg string, typ models.ToastType, d time.Duration, r *models.Reservation) string {
	if p.quiet {
		slog.Debug("toast", "type", typ, "msg", msg)
		return ""
	}
	switch typ {
	case models.ToastError:
		output.Error("%s", msg)
	case models.ToastWarning:
		output.Warning("%s", msg)
	case models.ToastSuccess:
		output.Success("%s", msg)
	default:
		output.Info("%s", msg)
	}
	return ""
}

// fail prints err the way staff expect to read it and returns it
func fail(err error) error {
	if fields, ok := validate.AsErrors(err); ok {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			output.Error("%s: %s", k, fields[k])
		}
		return err
	}
	output.Error("%s", api.Message(err, err.Error()))
	return err
}

var errNotConfirmed = errors.New("cancelled")

// confirmAction asks a yes/no question unless yes is already set. Without a
// terminal there is nobody to ask, so --yes is required.
func confirmAction(yes bool, title string) error {
	if yes {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%s: pass --yes to confirm non-interactively", title)
	}
	var ok bool
	if err := huh.NewConfirm().
		Title(title).
		Affirmative("Sí").
		Negative("No").
		Value(&ok).
		Run(); err != nil {
		return err
	}
	if !ok {
		return errNotConfirmed
	}
	return nil
}

// parseID accepts "12" or "#12"
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseDateFlag resolves a --date value; empty stays empty
func parseDateFlag(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return dateparse.ParseDate(s)
}
