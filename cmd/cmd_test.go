package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/marcus/rsv/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag in the tree back to its default so commands
// can run again in the same process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes rsv with args and returns what it printed on stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	oldOut := os.Stdout
	os.Stdout = w
	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	rootCmd.SetArgs(args)
	execErr := rootCmd.ExecuteContext(context.Background())

	w.Close()
	os.Stdout = oldOut
	return <-done, execErr
}

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "staff@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// testEnv points rsv at a temp config dir, a fake backend and a valid token
func testEnv(t *testing.T, router http.Handler) {
	t.Helper()
	t.Setenv("RSV_CONFIG_DIR", t.TempDir())
	t.Setenv("RSV_TOKEN", testToken(t, time.Now().Add(time.Hour)))
	t.Setenv("RSV_LOG_LEVEL", "error")
	if router != nil {
		srv := httptest.NewServer(router)
		t.Cleanup(srv.Close)
		t.Setenv("RSV_API_URL", srv.URL)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func reservation5() map[string]any {
	return map[string]any{
		"id":            5,
		"nombreCliente": "Ana López",
		"telefono":      "600111222",
		"numPersonas":   4,
		"fecha":         "2026-03-14T21:30:00.000Z",
		"estado":        "PENDIENTE",
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"#12", 12, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDateFlagEmpty(t *testing.T) {
	got, err := parseDateFlag("  ")
	if err != nil || got != "" {
		t.Errorf("parseDateFlag(blank) = %q, %v, want empty", got, err)
	}
	if _, err := parseDateFlag("nope"); err == nil {
		t.Error("expected error for an unparseable date")
	}
	if got, err := parseDateFlag("2026-03-14"); err != nil || got != "2026-03-14" {
		t.Errorf("parseDateFlag(2026-03-14) = %q, %v", got, err)
	}
}

func TestStatusValue(t *testing.T) {
	var st models.ReservationStatus
	v := newStatusValue(&st)
	tests := []struct {
		in      string
		want    models.ReservationStatus
		wantErr bool
	}{
		{"confirmada", models.StatusConfirmed, false},
		{"Pending", models.StatusPending, false},
		{"cancelled", models.StatusCancelled, false},
		{"", "", false},
		{"seated", "", true},
	}
	for _, tt := range tests {
		st = ""
		err := v.Set(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if st != tt.want {
			t.Errorf("Set(%q) = %q, want %q", tt.in, st, tt.want)
		}
	}
	if v.Type() != "status" {
		t.Errorf("Type() = %q, want %q", v.Type(), "status")
	}
}

func TestShapeValue(t *testing.T) {
	var shape models.TableShape
	v := newShapeValue(&shape)
	if err := v.Set("Redonda"); err != nil || shape != models.ShapeRound {
		t.Errorf("Set(Redonda) = %q, %v, want %q", shape, err, models.ShapeRound)
	}
	if err := v.Set("rect"); err != nil || shape != models.ShapeRectangular {
		t.Errorf("Set(rect) = %q, %v, want %q", shape, err, models.ShapeRectangular)
	}
	if err := v.Set("triangle"); err == nil {
		t.Error("expected error for an unknown shape")
	}
}

func TestFlagErrorHints(t *testing.T) {
	c := &cobra.Command{Use: "create"}
	c.Flags().Int("people", 0, "")
	c.Flags().String("phone", "", "")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"known alias", errors.New("unknown flag: --personas"), "unknown flag: --personas (use --people)"},
		{"typo", errors.New("unknown flag: --peple"), "unknown flag: --peple, did you mean --people?"},
		{"nothing close", errors.New("unknown flag: --zzzzzzzz"), "unknown flag: --zzzzzzzz"},
		{"other error", errors.New("invalid argument"), "invalid argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagError(c, tt.err).Error(); got != tt.want {
				t.Errorf("flagError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyAssignments(t *testing.T) {
	var in models.ConfigInput
	if err := applyAssignments(&in, []string{"nombre=Casa Pepe", "aforo_total=40", "autoAsignacion=sí"}); err != nil {
		t.Fatalf("applyAssignments: %v", err)
	}
	if in.Nombre != "Casa Pepe" || in.AforoTotal != 40 || !in.AutoAsignacion {
		t.Errorf("input = %+v", in)
	}

	err := applyAssignments(&in, []string{"nombr=x"})
	if err == nil || !strings.Contains(err.Error(), "did you mean nombre?") {
		t.Errorf("error = %v, want a nombre suggestion", err)
	}
	if err := applyAssignments(&in, []string{"aforoTotal"}); err == nil {
		t.Error("expected error for a missing value")
	}
	if err := applyAssignments(&in, []string{"aforoTotal=many"}); err == nil {
		t.Error("expected error for a non-numeric value")
	}
}

func TestVersionCommand(t *testing.T) {
	testEnv(t, nil)
	SetVersion("v1.4.0")
	t.Cleanup(func() { SetVersion("") })

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "rsv v1.4.0" {
		t.Errorf("output = %q, want %q", out, "rsv v1.4.0")
	}
}

func TestConfigSetAndShow(t *testing.T) {
	testEnv(t, nil)

	if _, err := runCLI(t, "config", "set", "poll_interval", "30s"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := runCLI(t, "config", "show", "--json")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var shown map[string]any
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("config show output is not JSON: %s", out)
	}
	if shown["poll_interval"] != "30s" {
		t.Errorf("poll_interval = %v, want 30s", shown["poll_interval"])
	}
	if shown["zone"] != "INTERIOR" {
		t.Errorf("zone = %v, want INTERIOR", shown["zone"])
	}
}

func TestConfigSetUnknownKeySuggests(t *testing.T) {
	testEnv(t, nil)

	out, err := runCLI(t, "config", "set", "pol_interval", "30s")
	if err == nil {
		t.Fatal("expected error for an unknown key")
	}
	if !strings.Contains(out, "did you mean poll_interval?") {
		t.Errorf("output = %q, want a poll_interval suggestion", out)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	testEnv(t, nil)
	t.Setenv("RSV_TOKEN", "")

	out, err := runCLI(t, "reservations", "show", "5")
	if err == nil {
		t.Fatal("expected error without a session")
	}
	if !strings.Contains(out, "not logged in") {
		t.Errorf("output = %q, want a login hint", out)
	}
}

func TestCommandsRejectExpiredToken(t *testing.T) {
	testEnv(t, nil)
	t.Setenv("RSV_TOKEN", testToken(t, time.Now().Add(-time.Hour)))

	out, err := runCLI(t, "reservations", "show", "5")
	if err == nil {
		t.Fatal("expected error for an expired token")
	}
	if !strings.Contains(out, "session expired") {
		t.Errorf("output = %q, want an expiry message", out)
	}
}

func TestReservationsShow(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/reservas/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if chi.URLParam(r, "id") != "5" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Reserva no encontrada"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": reservation5()})
	})
	testEnv(t, router)

	out, err := runCLI(t, "res", "show", "#5")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Reserva #5: Ana López", "Personas: 4", "600111222"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "res", "show", "9")
	if err == nil {
		t.Fatal("expected error for a missing reservation")
	}
	if !strings.Contains(out, "Reserva no encontrada") {
		t.Errorf("output = %q, want the backend message", out)
	}
}

func TestReservationsShowJSON(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/reservas/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": reservation5()})
	})
	testEnv(t, router)

	out, err := runCLI(t, "res", "show", "5", "--json")
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	var r models.Reservation
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("output is not a reservation: %s", out)
	}
	if r.ID != 5 || r.NombreCliente != "Ana López" || r.Estado != models.StatusPending {
		t.Errorf("reservation = %+v", r)
	}
}

func TestReservationsStatus(t *testing.T) {
	var sent atomic.Value
	router := chi.NewRouter()
	router.Patch("/api/reservas/{id}/estado", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		sent.Store(body["estado"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": 5, "estado": body["estado"]}})
	})
	testEnv(t, router)

	out, err := runCLI(t, "res", "status", "5", "confirmed")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got, _ := sent.Load().(string); got != "CONFIRMADA" {
		t.Errorf("sent estado = %q, want CONFIRMADA", got)
	}
	if !strings.Contains(out, "#5") {
		t.Errorf("output = %q, want the reservation id", out)
	}

	if _, err := runCLI(t, "res", "status", "5", "seated"); err == nil {
		t.Error("expected error for an unknown status")
	}
}

func TestReservationsDeleteWithYes(t *testing.T) {
	var deleted atomic.Bool
	router := chi.NewRouter()
	router.Get("/api/reservas/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": reservation5()})
	})
	router.Delete("/api/reservas/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(chi.URLParam(r, "id") == "5")
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	testEnv(t, router)

	out, err := runCLI(t, "res", "rm", "5", "--yes")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.Load() {
		t.Error("DELETE was not sent for #5")
	}
	if !strings.Contains(out, "Deleted reservation #5") {
		t.Errorf("output = %q", out)
	}
}

func TestUnknownFlagHintThroughRoot(t *testing.T) {
	testEnv(t, nil)

	_, err := runCLI(t, "res", "create", "--personas", "4")
	if err == nil {
		t.Fatal("expected error for an unknown flag")
	}
	if !strings.Contains(err.Error(), "--people") {
		t.Errorf("error = %v, want a --people hint", err)
	}
}
