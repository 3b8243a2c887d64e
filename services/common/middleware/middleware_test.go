package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kadekedwin/billforge/services/common/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func pageRouter(gate *SessionGate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gate.Handler())
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "page") })
	return r
}

func get(r http.Handler, target, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionGate_Redirects(t *testing.T) {
	r := pageRouter(NewSessionGate(DefaultGateConfig()))

	w := get(r, "/sale", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = get(r, "/login", "opaque-session")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sale", w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, get(r, "/sale", "opaque-session").Code)
	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/register", "").Code)
}

func TestSessionGate_SkipsAPIAndAssets(t *testing.T) {
	r := pageRouter(NewSessionGate(DefaultGateConfig()))

	for _, p := range []string{"/api/print-thermal", "/api", "/static/app.js", "/logo.png", "/favicon.ico", "/health"} {
		assert.Equal(t, http.StatusOK, get(r, p, "").Code, p)
	}
	// segment boundary: "/apiary" is a page, not the API prefix
	assert.Equal(t, http.StatusFound, get(r, "/apiary", "").Code)
}

func TestSessionGate_DecideTable(t *testing.T) {
	g := NewSessionGate(GateConfig{PublicOnly: []string{"/login"}})
	cases := []struct {
		path       string
		hasSession bool
		want       string
	}{
		{"/sale", false, "/login"},
		{"/sale", true, ""},
		{"/login", false, ""},
		{"/login", true, "/sale"},
		{"/login/reset", true, "/sale"},
		{"/", false, "/login"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, g.Decide(tc.path, tc.hasSession), "%s session=%v", tc.path, tc.hasSession)
	}
}

func TestSessionGate_ValidatorRejectsForgedToken(t *testing.T) {
	cfg := DefaultGateConfig()
	cfg.Validator = auth.NewTokenValidator("gate-secret", "")
	r := pageRouter(NewSessionGate(cfg))

	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("gate-secret"))
	require.NoError(t, err)

	w := get(r, "/login", valid)
	assert.Equal(t, "/sale", w.Header().Get("Location"))

	w = get(r, "/sale", "forged")
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionIdentity("", nil))
	r.GET("/me", func(c *gin.Context) {
		id, err := GetUserID(c)
		require.NoError(t, err)
		c.String(http.StatusOK, id)
	})

	w := get(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", "cookie-session")
	assert.Equal(t, "cookie-session", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-ID", "header-user")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "header-user", w.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(PerMinute(1), 2, time.Minute)
	defer limiter.Close()

	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/x", "").Code)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, string(b))
	})

	post := func(body io.Reader, length int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", body)
		req.ContentLength = length
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(strings.NewReader("small"), 5)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "small", w.Body.String())

	assert.Equal(t, http.StatusRequestEntityTooLarge, post(strings.NewReader(strings.Repeat("x", 64)), 64).Code)
	// unknown length: cut off while reading
	assert.Equal(t, http.StatusBadRequest, post(strings.NewReader(strings.Repeat("x", 64)), -1).Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("http://pos.local/, http://admin.local"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://pos.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core), "/health"))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/ok", "/bad", "/boom", "/health"} {
		get(r, p, "")
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}

type recordedMetric struct {
	name string
	dims map[string]string
}

type fakeMetrics struct {
	mu      sync.Mutex
	records []recordedMetric
	wg      sync.WaitGroup
}

func (f *fakeMetrics) IsEnabled() bool { return true }

func (f *fakeMetrics) RecordCount(_ context.Context, name string, dims map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedMetric{name, dims})
	f.wg.Done()
	return nil
}

func (f *fakeMetrics) RecordLatency(_ context.Context, name string, _ time.Duration, dims map[string]string) error {
	return f.RecordCount(context.Background(), name, dims)
}

func TestMetricsMiddleware_RecordsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := &fakeMetrics{}
	m.wg.Add(4) // requests, latency, errors, 5xx

	r := gin.New()
	r.Use(MetricsMiddleware(m, "receipt-service"))
	r.POST("/api/print-thermal", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodPost, "/api/print-thermal", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.records, 4)
	assert.Equal(t, "/api/print-thermal", m.records[0].dims["Path"])
	assert.Equal(t, "5xx", m.records[0].dims["Status"])
}
