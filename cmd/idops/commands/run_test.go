package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// fakeBackend serves the endpoints the command tests call.
type fakeBackend struct {
	mu       sync.Mutex
	alerts   []ops.Alert
	requests []string
	posts    []string
	health   int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	backend := &fakeBackend{
		alerts: []ops.Alert{
			{ID: 1, AlertType: "mv_stale", Severity: "warning", Message: "Materialized view is stale"},
			{ID: 2, AlertType: "run_failed", Severity: "error", Message: "Identity run failed"},
		},
		health: http.StatusOK,
	}

	server := httptest.NewServer(http.HandlerFunc(backend.serve))
	t.Cleanup(server.Close)

	return backend, server
}

func (b *fakeBackend) serve(writer http.ResponseWriter, request *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := strings.TrimPrefix(request.URL.Path, constants.APIPrefix)
	b.requests = append(b.requests, path+"?"+request.URL.RawQuery)

	writer.Header().Set("Content-Type", "application/json")

	switch {
	case request.Method == http.MethodPost && path == "/auth/login":
		_, _ = writer.Write([]byte(`{"access_token":"opaque-token","token_type":"bearer","expires_in":3600,` +
			`"user":{"id":"u-1","email":"ops@example.com","full_name":"Ops Person","role":"admin"}}`))
	case request.Method == http.MethodPost && path == "/ops/alerts/9/acknowledge":
		b.posts = append(b.posts, path)

		writer.WriteHeader(http.StatusConflict)
		_, _ = writer.Write([]byte(`{"detail":"Alert already acknowledged"}`))
	case request.Method == http.MethodPost && strings.HasSuffix(path, "/acknowledge"):
		b.posts = append(b.posts, path)
		id, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(path, "/ops/alerts/"), "/acknowledge"))

		for i := range b.alerts {
			if b.alerts[i].ID == id {
				b.alerts[i].Acknowledged = true
			}
		}

		_, _ = writer.Write([]byte(`{"ok":true}`))
	case path == "/ops/alerts":
		query := request.URL.Query()
		matched := []ops.Alert{}

		for _, alert := range b.alerts {
			if severity := query.Get("severity"); severity != "" && alert.Severity != severity {
				continue
			}

			if acknowledged := query.Get("acknowledged"); acknowledged != "" &&
				strconv.FormatBool(alert.Acknowledged) != acknowledged {
				continue
			}

			matched = append(matched, alert)
		}

		items := matched
		if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
			offset, _ := strconv.Atoi(query.Get("offset"))
			start := min(offset, len(matched))
			items = matched[start:min(start+limit, len(matched))]
		}

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{"items": items, "total": len(matched)})
	case path == "/ops/health/global":
		writer.WriteHeader(b.health)

		if b.health != http.StatusOK {
			_, _ = writer.Write([]byte(`{"detail":"database unavailable"}`))

			return
		}

		_, _ = writer.Write([]byte(`{"global_status":"ok","checks_ok":12,"checks_warn":1,"checks_error":0}`))
	case path == "/identity/stats":
		_, _ = writer.Write([]byte(`{"total_persons":1234,"total_links":2500,"total_unmatched":7,"conversion_rate":0.42}`))
	case path == "/payments/driver-matrix/export":
		writer.Header().Set("Content-Type", "text/csv")
		_, _ = writer.Write([]byte("driver_id,week_start\nd-1," + request.URL.Query().Get("week_start") + "\n"))
	default:
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"detail":"Not found"}`))
	}
}

func (b *fakeBackend) requested(prefix string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []string

	for _, request := range b.requests {
		if strings.HasPrefix(request, prefix) {
			out = append(out, request)
		}
	}

	return out
}

// execute runs the CLI with a clean home directory and viper state.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stdout, stderr bytes.Buffer

	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--no-color"))

	err := root.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func backendArgs(server *httptest.Server, args ...string) []string {
	return append(args, "--api", server.URL, "--token", "test-token")
}

func TestAlertsList(t *testing.T) {
	backend, server := newFakeBackend(t)

	stdout, _, err := execute(t, "", backendArgs(server, "alerts", "list", "--severity", "error", "--limit", "10")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Identity run failed")
	assert.NotContains(t, stdout, "Materialized view is stale")

	requests := backend.requested("/ops/alerts?")
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], "severity=error")
	assert.Contains(t, requests[0], "limit=10")
	assert.Contains(t, requests[0], "offset=0")
}

func TestAlertsList_JSON(t *testing.T) {
	_, server := newFakeBackend(t)

	stdout, _, err := execute(t, "", backendArgs(server, "alerts", "list", "--output", "json")...)
	require.NoError(t, err)

	var list ops.ListResponse[ops.Alert]

	require.NoError(t, json.Unmarshal([]byte(stdout), &list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "run_failed", list.Items[1].AlertType)
}

func TestAlertsList_InvalidFilter(t *testing.T) {
	backend, server := newFakeBackend(t)

	_, _, err := execute(t, "", backendArgs(server, "alerts", "list", "--severity", "fatal")...)
	require.ErrorIs(t, err, constants.ErrInvalidFilterValue)
	assert.Empty(t, backend.requested("/ops/alerts"))
}

func TestAlertsAck(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		backend, server := newFakeBackend(t)

		stdout, stderr, err := execute(t, "y\n", backendArgs(server, "alerts", "ack", "2")...)
		require.NoError(t, err)
		assert.Contains(t, stderr, "Acknowledge alert #2?")
		assert.Contains(t, stdout, "Acknowledged alert 2")
		assert.Equal(t, []string{"/ops/alerts/2/acknowledge"}, backend.posts)
	})

	t.Run("declined", func(t *testing.T) {
		backend, server := newFakeBackend(t)

		_, _, err := execute(t, "n\n", backendArgs(server, "alerts", "ack", "2")...)
		require.ErrorIs(t, err, ErrNotConfirmed)
		assert.Empty(t, backend.posts)
	})

	t.Run("forced", func(t *testing.T) {
		backend, server := newFakeBackend(t)

		_, _, err := execute(t, "", backendArgs(server, "alerts", "ack", "1", "--force")...)
		require.NoError(t, err)
		assert.Equal(t, []string{"/ops/alerts/1/acknowledge"}, backend.posts)
	})
}

func TestAlertsAck_Batch(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		backend, server := newFakeBackend(t)

		stdout, stderr, err := execute(t, "yes\n", backendArgs(server, "alerts", "ack", "1", "2")...)
		require.NoError(t, err)
		assert.Contains(t, stderr, "Acknowledge 2 alerts (#1, #2)?")
		assert.Contains(t, stdout, "acknowledge alert #1")
		assert.Contains(t, stdout, "acknowledge alert #2")
		assert.ElementsMatch(t, []string{"/ops/alerts/1/acknowledge", "/ops/alerts/2/acknowledge"}, backend.posts)
	})

	t.Run("partial failure", func(t *testing.T) {
		_, server := newFakeBackend(t)

		stdout, _, err := execute(t, "", backendArgs(server, "alerts", "ack", "1", "9", "--force", "--output", "json")...)
		require.ErrorIs(t, err, ops.ErrBatchFailed)
		assert.Contains(t, err.Error(), "1 of 2 operations failed: 9")

		var results []ops.BatchResult

		require.NoError(t, json.Unmarshal([]byte(stdout), &results))
		require.Len(t, results, 2)
		assert.True(t, results[0].Success)
		assert.False(t, results[1].Success)
		assert.Contains(t, results[1].Message, "Alert already acknowledged")
	})
}

func TestAlertsAck_AllOpen(t *testing.T) {
	openAndClosed := []ops.Alert{
		{ID: 1, AlertType: "mv_stale", Severity: "warning", Message: "Materialized view is stale"},
		{ID: 2, AlertType: "run_failed", Severity: "error", Message: "Identity run failed"},
		{ID: 3, AlertType: "mv_stale", Severity: "warning", Message: "Refreshed", Acknowledged: true},
		{ID: 4, AlertType: "payment_gap", Severity: "warning", Message: "Payments missing for week"},
	}

	t.Run("walks every page", func(t *testing.T) {
		backend, server := newFakeBackend(t)
		backend.alerts = openAndClosed

		stdout, _, err := execute(t, "", backendArgs(server, "alerts", "ack", "--all-open", "--force", "--limit", "1")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "acknowledge alert #4")
		assert.ElementsMatch(t, []string{
			"/ops/alerts/1/acknowledge",
			"/ops/alerts/2/acknowledge",
			"/ops/alerts/4/acknowledge",
		}, backend.posts)

		lists := backend.requested("/ops/alerts?")
		require.Len(t, lists, 3)
		assert.Contains(t, lists[0], "offset=0")
		assert.Contains(t, lists[2], "offset=2")
	})

	t.Run("severity filter", func(t *testing.T) {
		backend, server := newFakeBackend(t)
		backend.alerts = openAndClosed

		stdout, stderr, err := execute(t, "y\n", backendArgs(server, "alerts", "ack", "--all-open", "--severity", "error")...)
		require.NoError(t, err)
		assert.Contains(t, stderr, "Acknowledge alert #2?")
		assert.Contains(t, stdout, "Acknowledged alert 2")
		assert.Equal(t, []string{"/ops/alerts/2/acknowledge"}, backend.posts)
	})

	t.Run("declined", func(t *testing.T) {
		backend, server := newFakeBackend(t)
		backend.alerts = openAndClosed

		_, stderr, err := execute(t, "n\n", backendArgs(server, "alerts", "ack", "--all-open")...)
		require.ErrorIs(t, err, ErrNotConfirmed)
		assert.Contains(t, stderr, "Acknowledge 3 alerts (#1, #2, #4)?")
		assert.Empty(t, backend.posts)
	})

	t.Run("nothing open", func(t *testing.T) {
		backend, server := newFakeBackend(t)
		backend.alerts = openAndClosed[2:3]

		stdout, _, err := execute(t, "", backendArgs(server, "alerts", "ack", "--all-open", "--force")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "No open alerts")
		assert.Empty(t, backend.posts)
	})

	t.Run("ids and all-open are exclusive", func(t *testing.T) {
		_, server := newFakeBackend(t)

		_, _, err := execute(t, "", backendArgs(server, "alerts", "ack", "1", "--all-open")...)
		require.ErrorIs(t, err, constants.ErrAckTargets)

		_, _, err = execute(t, "", backendArgs(server, "alerts", "ack")...)
		require.ErrorIs(t, err, constants.ErrAckTargets)
	})
}

func TestIdentityStats(t *testing.T) {
	_, server := newFakeBackend(t)

	stdout, _, err := execute(t, "", backendArgs(server, "identity", "stats")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Persons")
	assert.Contains(t, stdout, "1,234")
}

func TestHealthGlobal_ServerError(t *testing.T) {
	backend, server := newFakeBackend(t)
	backend.health = http.StatusInternalServerError
	t.Setenv("IDOPS_RETRY", "0")

	_, _, err := execute(t, "", backendArgs(server, "health", "global")...)
	require.Error(t, err)
	assert.True(t, ops.IsServerError(err))
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestPersonsGet_NotFound(t *testing.T) {
	_, server := newFakeBackend(t)

	_, _, err := execute(t, "", backendArgs(server, "persons", "get", "missing")...)
	require.ErrorIs(t, err, ErrPersonNotFound)
}

func TestIdentityResolve_RequiresNotes(t *testing.T) {
	_, server := newFakeBackend(t)

	_, _, err := execute(t, "", backendArgs(server, "identity", "resolve", "7", "--resolution", "ignored", "--force")...)
	require.ErrorIs(t, err, constants.ErrNotesRequired)
}

func TestExport(t *testing.T) {
	backend, server := newFakeBackend(t)
	file := filepath.Join(t.TempDir(), "matrix.csv")

	_, stderr, err := execute(t, "", backendArgs(server, "export", "driver-matrix", "week_start=2025-12-17", "--file", file)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "driver_id,week_start\nd-1,2025-12-15\n", string(data))

	requests := backend.requested("/payments/driver-matrix/export")
	require.Len(t, requests, 1)
	assert.NotContains(t, requests[0], "limit=")

	_, _, err = execute(t, "", backendArgs(server, "export", "driver-matrix", "--file", file)...)
	require.ErrorIs(t, err, ErrOutputFileExists)

	_, _, err = execute(t, "", backendArgs(server, "export", "driver-matrix", "--file", file, "--force")...)
	require.NoError(t, err)
}

func TestExport_Errors(t *testing.T) {
	_, server := newFakeBackend(t)

	_, _, err := execute(t, "", backendArgs(server, "export", "payroll")...)
	require.ErrorIs(t, err, constants.ErrUnknownExport)

	_, _, err = execute(t, "", backendArgs(server, "export", "driver-matrix", "color=blue")...)
	require.ErrorIs(t, err, constants.ErrUnknownFilter)

	_, _, err = execute(t, "", backendArgs(server, "export", "driver-matrix", "--file", "../escape.csv")...)
	require.ErrorIs(t, err, constants.ErrDirectoryTraversalDetected)
}

func TestLoginWhoamiLogout(t *testing.T) {
	_, server := newFakeBackend(t)
	session := filepath.Join(t.TempDir(), "session.yml")
	t.Setenv("IDOPS_SESSION_FILE", session)

	stdout, _, err := execute(t, "", "login", "--api", server.URL, "-u", "ops@example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as Ops Person")
	assert.FileExists(t, session)

	stdout, _, err = execute(t, "", "whoami", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "email: ops@example.com")
	assert.Contains(t, stdout, "role: admin")

	stdout, _, err = execute(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out")

	_, _, err = execute(t, "", "whoami")
	require.ErrorIs(t, err, ops.ErrNotAuthenticated)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	_, server := newFakeBackend(t)

	_, _, err := execute(t, "\n\n", "login", "--api", server.URL)
	require.ErrorIs(t, err, constants.ErrEmptyCredentials)
}

func TestConfigSetShow(t *testing.T) {
	home := t.TempDir()

	run := func(args ...string) (string, error) {
		t.Helper()

		viper.Reset()
		t.Setenv("HOME", home)

		var stdout bytes.Buffer

		root := NewRootCommand("dev", "none", "unknown")
		root.SetOut(&stdout)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)

		err := root.Execute()

		return stdout.String(), err
	}

	t.Cleanup(viper.Reset)

	_, err := run("config", "set", "page_size", "25")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, constants.ConfigDirName, "config.yml"))

	stdout, err := run("config", "show", "--output", "json")
	require.NoError(t, err)

	var config Config

	require.NoError(t, json.Unmarshal([]byte(stdout), &config))
	assert.Equal(t, 25, config.PageSize)

	_, err = run("config", "set", "page_size", "100000")
	require.ErrorIs(t, err, constants.ErrInvalidPageSize)

	_, err = run("config", "set", "colour", "red")
	require.ErrorIs(t, err, constants.ErrInvalidConfigKey)

	_, err = run("config", "unset", "page_size")
	require.NoError(t, err)

	stdout, err = run("config", "show", "--output", "json")
	require.NoError(t, err)

	config = Config{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &config))
	assert.Zero(t, config.PageSize)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version", "--output", "json")
	require.NoError(t, err)

	var info VersionInfo

	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.NotEmpty(t, info.GoVersion)

	_, _, err = execute(t, "", "version", "--output", "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutputValue)
}

func TestMetricsFile(t *testing.T) {
	_, server := newFakeBackend(t)
	file := filepath.Join(t.TempDir(), "idops.prom")

	_, _, err := execute(t, "", backendArgs(server, "alerts", "list", "--metrics-file", file)...)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "idops_api_requests_total")
	assert.Contains(t, string(data), "idops_query_cache_events_total")
}

func TestStartAt(t *testing.T) {
	_, err := startAt(nil, "nowhere")
	require.ErrorIs(t, err, constants.ErrUnsupportedScreen)
}
