package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssetSentinel/internal/model"
)

const testAssets = `
assets:
  - id: flat
    name: City Flat
    category: property
    type: physical
    purchase_price: 180000
    current_value: 215000
    quantity: 1
    purchase_date: 2020-09-01
`

// testEnv writes a config pointing every path into a temp dir.
func testEnv(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	assetsPath := filepath.Join(dir, "assets.yaml")
	require.NoError(t, os.WriteFile(assetsPath, []byte(testAssets), 0o644))

	cfg := fmt.Sprintf(`
api:
  assets_file: %s
storage:
  driver: file
  path: %s
database:
  sqlite_path: %s
forecast:
  seed: 11
log:
  level: error
  output: stderr
`, assetsPath, filepath.Join(dir, "storage.json"), filepath.Join(dir, "db", "sentinel.db"))
	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, dir
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLedgerCommands(t *testing.T) {
	cfg, dir := testEnv(t)

	out, err := run(t, cfg, "ledger", "add", "lend", "--id", "l1", "--amount", "50",
		"--counterparty", "Sam", "--end", "2026-12-01", "--reminder")
	require.NoError(t, err, out)
	assert.Contains(t, out, "added lent entry l1")

	_, err = run(t, cfg, "ledger", "add", "borrowed", "--amount", "abc")
	assert.Error(t, err)
	_, err = run(t, cfg, "ledger", "add", "owed", "--amount", "5")
	assert.Error(t, err)

	out, err = run(t, cfg, "ledger", "list", "lent")
	require.NoError(t, err)
	assert.Contains(t, out, "l1")
	assert.Contains(t, out, "outstanding: 50.00")

	_, err = run(t, cfg, "ledger", "done", "lent", "l1")
	require.NoError(t, err)
	out, err = run(t, cfg, "ledger", "list", "lent")
	require.NoError(t, err)
	assert.NotContains(t, out, "l1")
	assert.Contains(t, out, "outstanding: 0.00")

	out, err = run(t, cfg, "ledger", "list", "lent", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "done")

	_, err = run(t, cfg, "ledger", "done", "lent", "missing")
	assert.Error(t, err)

	xlsx := filepath.Join(dir, "ledger.xlsx")
	_, err = run(t, cfg, "ledger", "export", xlsx)
	require.NoError(t, err)
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = run(t, cfg, "ledger", "delete", "lent", "l1")
	require.NoError(t, err)
	out, err = run(t, cfg, "ledger", "list", "lent", "--all")
	require.NoError(t, err)
	assert.NotContains(t, out, "l1")
}

func TestSessionCommands(t *testing.T) {
	cfg, _ := testEnv(t)

	out, err := run(t, cfg, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	_, err = run(t, cfg, "ledger", "add", "borrowed", "--amount", "20")
	require.NoError(t, err)

	_, err = run(t, cfg, "session", "login", "--token", "tok", "--tenant", "t1", "--user", "u1")
	require.NoError(t, err)
	out, err = run(t, cfg, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "tenant: t1")
	assert.Contains(t, out, "user:   u1")
	assert.Contains(t, out, "2fa verification required")

	_, err = run(t, cfg, "session", "verify", "123456")
	assert.Error(t, err, "no backend configured")

	out, err = run(t, cfg, "session", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")

	out, err = run(t, cfg, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	out, err = run(t, cfg, "ledger", "list", "borrowed")
	require.NoError(t, err)
	assert.Contains(t, out, "outstanding: 20.00", "logout keeps the ledger")
}

func TestSessionMigrateCommand(t *testing.T) {
	cfg, dir := testEnv(t)
	legacy := `{"accessToken":"legacy-token","tenant_id":"t9"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storage.json"), []byte(legacy), 0o600))

	out, err := run(t, cfg, "session", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "token <- accessToken")
	assert.Contains(t, out, "tenantId <- tenant_id")

	out, err = run(t, cfg, "session", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "session schema is current")
}

func TestAssetsAndForecastCommands(t *testing.T) {
	cfg, _ := testEnv(t)

	out, err := run(t, cfg, "assets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "City Flat")
	assert.Contains(t, out, "215000.00")

	out, err = run(t, cfg, "assets", "portfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "gain:   35000.00 USD")

	out, err = run(t, cfg, "forecast", "flat", "--json")
	require.NoError(t, err)
	var res model.ForecastResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "flat", res.AssetID)
	assert.Equal(t, 215000.0, res.CurrentPrice)

	out, err = run(t, cfg, "forecast", "flat")
	require.NoError(t, err)
	assert.Contains(t, out, "City Flat (flat)")

	_, err = run(t, cfg, "forecast", "yacht")
	assert.Error(t, err)
}

func TestTwoFactorCommands(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/2fa/setup":
			_, _ = w.Write([]byte(`{"secret":"JBSWY3DP","backupCodes":["111"]}`))
		case "/api/2fa/disable":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["code"] != "123456" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"invalid code"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case "/api/2fa/status":
			_, _ = w.Write([]byte(`{"enabled":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	cfg, _ := testEnv(t)
	raw, err := os.ReadFile(cfg)
	require.NoError(t, err)
	withBackend := strings.Replace(string(raw), "api:\n", "api:\n  base_url: "+backend.URL+"\n", 1)
	require.NoError(t, os.WriteFile(cfg, []byte(withBackend), 0o644))

	_, err = run(t, cfg, "session", "login", "--token", "tok", "--tenant", "t1")
	require.NoError(t, err)

	out, err := run(t, cfg, "session", "2fa", "setup")
	require.NoError(t, err, out)
	assert.Contains(t, out, "secret:  JBSWY3DP")
	assert.Contains(t, out, "backup:  111")

	out, err = run(t, cfg, "session", "2fa", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "enabled")

	_, err = run(t, cfg, "session", "2fa", "disable", "000000")
	assert.Error(t, err)
	out, err = run(t, cfg, "session", "2fa", "disable", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")
}

func TestTwoFactorCommands_NeedBackend(t *testing.T) {
	cfg, _ := testEnv(t)
	_, err := run(t, cfg, "session", "2fa", "setup")
	assert.ErrorContains(t, err, "api.base_url")
}
