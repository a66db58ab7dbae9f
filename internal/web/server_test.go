package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/scicalc"
	"github.com/njchilds90/scicalc/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New(config.DefaultConfig(), zap.New(core), opts...), logs
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPage_Defaults(t *testing.T) {
	s, logs := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Trigonometric Functions")
	assert.Contains(t, body, "sin(0°) = 0.0000")
	assert.Contains(t, body, "A + B = [[6, 8], [10, 12]]")
	assert.Contains(t, body, "Derivative of 2*x + 2*y with respect to x:")
	assert.Contains(t, body, `<option selected>Add</option>`)

	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "/", fields["path"])
	assert.Equal(t, rec.Header().Get(requestIDHeader), fields["request_id"])
}

func TestPage_QueryOverrides(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/?angle=150&shift=on", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "arcsin(0.5) = 30.0000°")
}

func TestPage_PostShowsErrorsInline(t *testing.T) {
	s, _ := newTestServer(t)
	form := url.Values{
		"angle":     {"45"},
		"matrix_op": {"Divide"},
		"matrix_a":  {"1 2; 3 4"},
		"matrix_b":  {"5 6; 7 8"},
		"expr":      {"x + z"},
		"vars":      {"x"},
		"calc_op":   {scicalc.OpDerivative},
	}
	rec := do(t, s.Handler(), http.MethodPost, "/", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tan(45°) = 1.0000")
	assert.Contains(t, body, "Unsupported Operation")
	assert.Contains(t, body, "undeclared variables: z")
}

func TestPage_PostedCheckboxOff(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Defaults.Shift = true
	s := New(cfg, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/", nil, "")
	assert.Contains(t, rec.Body.String(), "arcsin(0) = 0.0000°")

	form := url.Values{"angle": {"30"}}
	rec = do(t, s.Handler(), http.MethodPost, "/", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Contains(t, rec.Body.String(), "sin(30°) = 0.5000")
}

func TestFormFrom(t *testing.T) {
	defaults := scicalc.DefaultForm()

	f := formFrom(url.Values{"expr": {"x^3"}}, defaults, false)
	assert.Equal(t, "x^3", f.Expr)
	assert.Equal(t, defaults.Vars, f.Vars)
	assert.False(t, f.Shift)

	defaults.Shift = true
	assert.True(t, formFrom(url.Values{}, defaults, false).Shift)
	assert.False(t, formFrom(url.Values{}, defaults, true).Shift)
	assert.True(t, formFrom(url.Values{"shift": {"true"}}, scicalc.DefaultForm(), true).Shift)
}

func TestTool_RoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/tool",
		strings.NewReader(`{"tool":"derivative","params":{"expr":"x^2 + y^2","var":"x"}}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp scicalc.ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
	assert.Equal(t, "2 x", resp.LaTeX)
}

func TestTool_ErrorsStayInBody(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/tool",
		strings.NewReader(`{"tool":"matrix","params":{"op":"Divide"}}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"Unsupported Operation"}`, rec.Body.String())
}

func TestTool_BadRequests(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"unknown field", `{"tool":"schema","extra":1}`, http.StatusBadRequest, "unknown field"},
		{"trailing data", `{"tool":"schema"} {"tool":"schema"}`, http.StatusBadRequest, "trailing data"},
		{"not json", `tool=schema`, http.StatusBadRequest, "invalid character"},
		{"too large", `{"tool":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/tool", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestTool_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/tool", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchemaAndHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s.Handler(), http.MethodGet, "/api/schema", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, scicalc.ToolSpec(), rec.Body.String())

	rec = do(t, s.Handler(), http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
}

func TestRequestID_Propagated(t *testing.T) {
	s, _ := newTestServer(t)
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))

	req.Header.Set(requestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(requestIDHeader))
}

func TestRecover(t *testing.T) {
	s, logs := newTestServer(t)
	h := s.withRequestID(s.withAccessLog(s.withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))))
	rec := do(t, h, http.MethodGet, "/", nil, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("panic in handler").Len())
	assert.Equal(t, int64(http.StatusInternalServerError), logs.FilterMessage("request").All()[0].ContextMap()["status"])
}

func testClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
}

func TestServe_GracefulShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := testClient().Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func writeConfig(path string, precision int) error {
	data := fmt.Sprintf("server:\n  watch: true\nprecision: %d\ndefaults:\n  angle: \"30\"\n", precision)
	return os.WriteFile(path, []byte(data), 0644)
}

func TestServe_ReloadsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scicalc.yaml")
	require.NoError(t, writeConfig(path, 4))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	s := New(cfg, nil, WithConfigPath(path), WithLevel(level))
	s.debounce = 10 * time.Millisecond

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	calc, defaults := s.state()
	require.Equal(t, 4, calc.Precision())
	require.Equal(t, "30", defaults.Angle)

	// The watcher starts asynchronously; keep rewriting until it notices.
	require.Eventually(t, func() bool {
		if err := writeConfig(path, 2); err != nil {
			return false
		}
		calc, _ := s.state()
		return calc.Precision() == 2
	}, 5*time.Second, 50*time.Millisecond)

	// An invalid file keeps the running config.
	require.NoError(t, os.WriteFile(path, []byte("precision: 99\n"), 0644))
	time.Sleep(100 * time.Millisecond)
	calc, _ = s.state()
	assert.Equal(t, 2, calc.Precision())
}

func TestReload_Level(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "scicalc.yaml")
		require.NoError(t, writeConfig(path, 4))
		cfg, err := config.Load(path)
		require.NoError(t, err)

		level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
		s := New(cfg, nil, WithConfigPath(path), WithLevel(level), WithVerbose(verbose))
		require.NoError(t, writeConfig(path, 3))
		s.reload()

		calc, _ := s.state()
		assert.Equal(t, 3, calc.Precision())
		want := zapcore.InfoLevel
		if verbose {
			want = zapcore.DebugLevel
		}
		assert.Equal(t, want, level.Level(), "verbose=%v", verbose)
	}
}

func TestNew_WatchDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	s := New(cfg, nil, WithConfigPath("scicalc.yaml"))
	assert.Empty(t, s.cfgPath)
}
