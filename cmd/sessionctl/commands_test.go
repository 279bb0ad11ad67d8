package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"

	"github.com/casedesk/session-guard/internal/infrastructure/config"
)

type harness struct {
	t     *testing.T
	store string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, store: filepath.Join(t.TempDir(), "session.json")}
}

// exec runs one sessionctl invocation with a fresh configuration, the way
// separate processes would.
func (h *harness) exec(args ...string) (int, map[string]any) {
	h.t.Helper()
	cfg, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(h.t, err)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-store", h.store}, args...), cfg, &stdout, &stderr)

	var out map[string]any
	if stdout.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	}
	return code, out
}

func TestSessionctl_RegisterWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	code, out := h.exec("register", "-name", "New User", "-email", "new@example.com", "-password", "password123")
	require.Equal(t, 0, code, out)
	require.Equal(t, true, out["success"])

	code, out = h.exec("whoami")
	require.Equal(t, 0, code)
	require.Equal(t, "new@example.com", out["email"])
	require.Equal(t, "user", out["role"])

	code, out = h.exec("info")
	require.Equal(t, 0, code)
	require.Equal(t, true, out["isValid"])

	code, _ = h.exec("refresh")
	require.Equal(t, 0, code)

	code, _ = h.exec("logout")
	require.Equal(t, 0, code)

	code, out = h.exec("info")
	require.Equal(t, 1, code)
	require.Equal(t, "not_authenticated", out["code"])

	code, _ = h.exec("refresh")
	require.Equal(t, 1, code)
}

func TestSessionctl_LoginFailures(t *testing.T) {
	h := newHarness(t)

	code, out := h.exec("login", "-email", "demo@example.com", "-password", "wrong")
	require.Equal(t, 1, code)
	require.Equal(t, "invalid_credentials", out["code"])

	code, out = h.exec("login", "-email", "demo@example.com", "-password", "demo123")
	require.Equal(t, 0, code)
	require.Equal(t, "admin", out["user"].(map[string]any)["role"])
}

func TestSessionctl_Usage(t *testing.T) {
	h := newHarness(t)

	code, _ := h.exec()
	require.Equal(t, 2, code)

	code, _ = h.exec("dance")
	require.Equal(t, 2, code)
}
