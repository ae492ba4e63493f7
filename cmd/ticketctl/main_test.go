package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/jrsteele09/go-ticket-client/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	api     *testutil.FakeAPI
	envFile string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	dir := t.TempDir()
	f := &testFixture{
		api:     testutil.NewFakeAPI(t),
		envFile: filepath.Join(dir, "missing.env"),
	}
	t.Setenv("API_URL", f.api.URL)
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("TICKETCTL_SESSION_FILE", filepath.Join(dir, "session.json"))
	t.Setenv("TICKETCTL_CONFIG", "")
	t.Setenv("TICKETCTL_TRACE", "")
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	return f
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (f *testFixture) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--env-file", f.envFile, "--no-colour"}, args...)
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (f *testFixture) serveLogin(t *testing.T, requires2FA bool) {
	t.Helper()
	f.api.JSON(http.MethodPost, "/api/users/smart-login/", http.StatusOK, map[string]any{
		"temp_session_id":   "tmp-1",
		"requires_2fa":      requires2FA,
		"two_factor_method": "email",
	})
	f.api.Handle(http.MethodPost, "/api/users/smart-login/verify/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code string `json:"code"`
			Skip bool   `json:"skip"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if requires2FA && body.Code != "123456" {
			testutil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid verification code"})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"access":  testutil.ValidToken(t),
			"refresh": "refresh-1",
			"user":    map[string]any{"id": 7, "email": "admin@example.com", "first_name": "Ada", "last_name": "Admin", "role": "admin"},
		})
	})
}

func (f *testFixture) signIn(t *testing.T) {
	t.Helper()
	f.serveLogin(t, false)
	res := f.run(t, "", "login", "--email", "admin@example.com", "--password", "secret")
	require.NoError(t, res.err)
}

func TestRun_Help(t *testing.T) {
	f := setupTestFixture(t)

	for _, args := range [][]string{nil, {"--help"}, {"help"}} {
		res := f.run(t, "", args...)
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "Commands:")
		require.Contains(t, res.stdout, "contractors")
		require.Contains(t, res.stdout, "--no-colour")
	}

	t.Run("subcommand help", func(t *testing.T) {
		res := f.run(t, "", "ticket", "renew", "--help")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "--days")
	})

	t.Run("unknown command", func(t *testing.T) {
		res := f.run(t, "", "frobnicate")
		require.ErrorContains(t, res.err, `unknown command "frobnicate"`)
	})
}

func TestRun_GuardedCommandsRedirectWhenSignedOut(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		args  []string
		route string
	}{
		{args: []string{"tickets"}, route: "/tickets"},
		{args: []string{"stats"}, route: "/dashboard"},
		{args: []string{"whoami"}, route: "/profile"},
		{args: []string{"2fa", "status"}, route: "/2fa-setup"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			res := f.run(t, "", tt.args...)
			require.ErrorIs(t, res.err, errNavigationRefused)
			require.Contains(t, res.stderr, "redirect "+tt.route+" -> /login")
		})
	}
	require.Zero(t, f.api.Calls(http.MethodGet, "/api/tickets/"))
	require.Zero(t, f.api.Calls(http.MethodGet, "/api/tickets/stats/"))
}

func TestRun_Login(t *testing.T) {
	t.Run("without two-factor", func(t *testing.T) {
		f := setupTestFixture(t)
		f.serveLogin(t, false)

		res := f.run(t, "", "login", "--email", "admin@example.com", "--password", "secret")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "Signed in as Ada Admin (admin)")

		var body struct {
			Skip bool `json:"skip"`
		}
		f.api.LastRequest(t, http.MethodPost, "/api/users/smart-login/verify/").DecodeBody(t, &body)
		require.True(t, body.Skip)
	})

	t.Run("code read from stdin", func(t *testing.T) {
		f := setupTestFixture(t)
		f.serveLogin(t, true)

		res := f.run(t, "123456\n", "login", "--email", "admin@example.com", "--password", "secret")
		require.NoError(t, res.err)
		require.Contains(t, res.stderr, "sent by email")
		require.Contains(t, res.stdout, "Signed in as")
	})

	t.Run("no code prints how to finish", func(t *testing.T) {
		f := setupTestFixture(t)
		f.serveLogin(t, true)

		res := f.run(t, "", "login", "--email", "admin@example.com", "--password", "secret")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "ticketctl verify --session tmp-1 --code <code>")

		res = f.run(t, "", "verify", "--session", "tmp-1", "--code", "123456")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "Signed in as")
	})

	t.Run("wrong code", func(t *testing.T) {
		f := setupTestFixture(t)
		f.serveLogin(t, true)

		res := f.run(t, "", "login", "--email", "admin@example.com", "--password", "secret", "--code", "000000")
		require.EqualError(t, res.err, "Invalid verification code")
	})

	t.Run("already signed in", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)

		res := f.run(t, "", "login", "--email", "admin@example.com", "--password", "secret")
		require.ErrorIs(t, res.err, errNavigationRefused)
		require.ErrorContains(t, res.err, "already signed in")
	})
}

func TestRun_SessionPersistsAcrossRuns(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	id := uuid.New()
	f.api.JSON(http.MethodGet, "/api/tickets/", http.StatusOK, []map[string]any{{
		"id":              id.String(),
		"ticket_number":   "TKT-0042",
		"organization":    "Acme",
		"location":        "Depot 4",
		"status":          "open",
		"expiration_date": "2026-11-01T12:00:00Z",
	}})

	res := f.run(t, "", "tickets", "--status", "open", "--search", "acme")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "TKT-0042")
	require.Contains(t, res.stdout, "2026-11-01")

	req := f.api.LastRequest(t, http.MethodGet, "/api/tickets/")
	require.Equal(t, "open", req.Query.Get("status"))
	require.Equal(t, "acme", req.Query.Get("search"))
	require.True(t, strings.HasPrefix(req.Authorization, "Bearer "))

	res = f.run(t, "", "logout")
	require.NoError(t, res.err)

	res = f.run(t, "", "tickets")
	require.ErrorIs(t, res.err, errNavigationRefused)
}

func TestRun_TicketCommands(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	id := uuid.New()
	path := fmt.Sprintf("/api/tickets/%s/", id)
	f.api.JSON(http.MethodGet, "/api/tickets/", http.StatusOK, []any{})
	f.api.JSON(http.MethodGet, "/api/tickets/stats/", http.StatusOK, map[string]int{"total": 4, "open": 2, "closed": 1, "in_progress": 1})

	t.Run("renew", func(t *testing.T) {
		f.api.JSON(http.MethodPost, path+"renew/", http.StatusOK, map[string]any{
			"message":             "Ticket renewed",
			"days_extended":       30,
			"new_expiration_date": "2026-12-01T12:00:00Z",
		})
		res := f.run(t, "", "ticket", "renew", id.String(), "--days", "30")
		require.NoError(t, res.err)
		require.Contains(t, res.stderr, "ok Ticket renewed for 30 days")
		require.Contains(t, res.stdout, "New expiration date: 2026-12-01")

		var body struct {
			Days int `json:"days"`
		}
		f.api.LastRequest(t, http.MethodPost, path+"renew/").DecodeBody(t, &body)
		require.Equal(t, 30, body.Days)
	})

	t.Run("close failure shows the notice once", func(t *testing.T) {
		f.api.JSON(http.MethodPost, path+"close/", http.StatusInternalServerError, nil)
		res := f.run(t, "", "ticket", "close", id.String())
		require.ErrorIs(t, res.err, errReported)
		require.Contains(t, res.stderr, "error Failed to close ticket")
		require.Empty(t, describe(res.err))
	})

	t.Run("create", func(t *testing.T) {
		f.api.JSON(http.MethodPost, "/api/tickets/", http.StatusCreated, map[string]any{
			"message": "Ticket created",
			"ticket":  map[string]any{"id": id.String(), "ticket_number": "TKT-0043"},
		})
		res := f.run(t, "", "ticket", "create",
			"--organization", "Acme", "--location", "Depot 4", "--expires", "2026-11-01", "--contractor", "3")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "Ticket created")

		var body map[string]any
		f.api.LastRequest(t, http.MethodPost, "/api/tickets/").DecodeBody(t, &body)
		require.Equal(t, "Acme", body["organization"])
		require.EqualValues(t, 3, body["assigned_contractor_id"])
	})

	t.Run("bad date", func(t *testing.T) {
		res := f.run(t, "", "ticket", "create", "--organization", "Acme", "--expires", "01/11/2026")
		require.ErrorContains(t, res.err, "YYYY-MM-DD")
	})

	t.Run("invalid id", func(t *testing.T) {
		res := f.run(t, "", "ticket", "show", "not-a-uuid")
		require.ErrorContains(t, res.err, `invalid ticket id "not-a-uuid"`)
	})

	t.Run("stats", func(t *testing.T) {
		res := f.run(t, "", "stats")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "Total:")
		require.Contains(t, res.stdout, "4")
	})
}

func TestRun_TwoFactorVerify(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.api.Handle(http.MethodPost, "/api/users/two-factor/verify/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Code != "654321" {
			testutil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Invalid code", "verified": false})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Code verified successfully", "verified": true})
	})

	t.Run("accepted", func(t *testing.T) {
		res := f.run(t, "", "2fa", "verify", "--code", "654321")
		require.NoError(t, res.err)
		require.Equal(t, "Code verified successfully\n", res.stdout)
	})

	t.Run("prompts for the code", func(t *testing.T) {
		res := f.run(t, "654321\n", "2fa", "verify")
		require.NoError(t, res.err)
		require.Contains(t, res.stdout, "Code verified successfully")
	})

	t.Run("rejected", func(t *testing.T) {
		res := f.run(t, "", "2fa", "verify", "--code", "000000")
		require.ErrorContains(t, res.err, "code not accepted: Invalid code")
	})

	require.Equal(t, 3, f.api.Calls(http.MethodPost, "/api/users/two-factor/verify/"))
}

func TestRun_Open(t *testing.T) {
	f := setupTestFixture(t)

	res := f.run(t, "", "open", "/")
	require.NoError(t, res.err)
	require.Equal(t, "redirect / -> /dashboard -> /login\n", res.stdout)

	res = f.run(t, "", "open", "/nowhere")
	require.ErrorIs(t, res.err, ierrors.ErrRouteNotFound)

	f.signIn(t)
	res = f.run(t, "", "open", "/tickets/")
	require.NoError(t, res.err)
	require.Equal(t, "/tickets\n", res.stdout)
}

func TestDescribe(t *testing.T) {
	expired := fmt.Errorf("loading: %w", ierrors.ErrSessionExpired)
	require.Contains(t, describe(expired), "sign in again")
	require.Contains(t, describe(reported(expired)), "sign in again")
	require.Empty(t, describe(reported(ierrors.ErrForbidden)))
	require.Equal(t, "boom", describe(fmt.Errorf("boom")))
}
