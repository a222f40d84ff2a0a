//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"rowguard/internal/api"
	"rowguard/internal/app"
	"rowguard/internal/config"
	"rowguard/internal/db"
	"rowguard/internal/middleware"
)

// integrationJWTSecret signs the bearer tokens the tests mint.
const integrationJWTSecret = "integration-test-secret"

// httpTestOpts tunes the server a test boots. Zero values give a server with
// the built-in policy, no demo data, and rate limits high enough to ignore.
type httpTestOpts struct {
	PolicyFile string
	SeedDemo   bool
	RateRPS    float64
	RateBurst  int
}

// testEnv bundles the running server with the wired application so tests can
// reach both the HTTP surface and, where needed, the audit pipeline.
type testEnv struct {
	Server *httptest.Server
	App    *app.App
}

// setupHTTPServer boots the full stack the way cmd/server does: temp SQLite
// pair, migrations, app wiring, HS256 bearer auth plus API keys, the chi
// router, and the audit replayer. Everything is torn down via t.Cleanup.
func setupHTTPServer(t *testing.T, opts httpTestOpts) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := &config.Config{
		DBPath:         filepath.Join(tmpDir, "rowguard.sqlite"),
		EncryptionKey:  strings.Repeat("ab", 32),
		LogLevel:       "error",
		Env:            "development",
		PolicyFile:     opts.PolicyFile,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		Auth:           config.AuthConfig{JWTSecret: integrationJWTSecret},
		Audit: config.AuditConfig{
			QueueSize:      64,
			Attempts:       2,
			Backoff:        10 * time.Millisecond,
			SpoolPath:      filepath.Join(tmpDir, "audit.spool"),
			ReplaySchedule: "@every 1m",
		},
	}
	if opts.RateRPS > 0 {
		cfg.RateLimitRPS = opts.RateRPS
	}
	if opts.RateBurst > 0 {
		cfg.RateLimitBurst = opts.RateBurst
	}

	writeDB, readDB, err := db.OpenPair(cfg.DBPath, 4)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	require.NoError(t, db.Migrate(writeDB))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(context.Background(), app.Deps{
		Cfg:      cfg,
		WriteDB:  writeDB,
		ReadDB:   readDB,
		Logger:   logger,
		SeedDemo: opts.SeedDemo,
	})
	require.NoError(t, err)

	validator, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Handler: api.NewHandler(
			a.Services.Credential, a.Services.Team,
			a.Services.AuditQuery, a.Services.APIKey,
		),
		Auth: middleware.NewAuthenticator(validator, a.APIKeyRepo, logger),
		Rate: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Logger:  logger,
		Metrics: a.Metrics.Handler(),
	})

	require.NoError(t, a.Replayer.Start())
	t.Cleanup(func() {
		a.Replayer.Stop()
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.AuditLogger.Close(drainCtx)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{Server: srv, App: a}
}

// bearerToken mints an HS256 token for sub, optionally with the admin claim.
func bearerToken(t *testing.T, sub string, admin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if admin {
		claims["admin"] = true
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(integrationJWTSecret))
	require.NoError(t, err)
	return signed
}

// doRequest sends a JSON request authenticated with a bearer token. An empty
// token leaves the request anonymous.
func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	req := newJSONRequest(t, method, url, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// doAPIKeyRequest sends a JSON request authenticated with a raw API key.
func doAPIKeyRequest(t *testing.T, method, url, rawKey string, body interface{}) *http.Response {
	t.Helper()

	req := newJSONRequest(t, method, url, body)
	req.Header.Set("X-API-Key", rawKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func newJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// dataArray decodes the {"data": [...]} envelope of the list endpoints.
func dataArray(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()

	var result struct {
		Data []map[string]interface{} `json:"data"`
	}
	decodeJSON(t, resp, &result)
	return result.Data
}

// waitForAuditEntries polls the audit endpoint as an admin until at least
// want entries match the query, then returns them. Decisions travel through
// an async pipeline, so entries may trail the response that caused them.
// The poll body avoids the require-based helpers; Eventually runs it on a
// separate goroutine where FailNow must not be called.
func waitForAuditEntries(t *testing.T, env *testEnv, query string, want int) []map[string]interface{} {
	t.Helper()

	admin := bearerToken(t, "auditor", true)
	url := env.Server.URL + "/v1/audit/entries?" + query

	var entries []map[string]interface{}
	require.Eventually(t, func() bool {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		req.Header.Set("Authorization", "Bearer "+admin)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var result struct {
			Data []map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return false
		}
		entries = result.Data
		return len(entries) >= want
	}, 5*time.Second, 25*time.Millisecond, "audit entries for %q never reached %d", query, want)
	return entries
}
