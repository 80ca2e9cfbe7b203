package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/auth/jwt"
	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestConfig() *config.APIServerConfig {
	cfg := &config.APIServerConfig{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.SecretKey = testSecret
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestApp(t *testing.T, mutate func(*config.APIServerConfig)) (*App, *database.SQLite) {
	t.Helper()
	cfg := newTestConfig()
	if mutate != nil {
		mutate(cfg)
	}
	cfg.SetDefaults()

	db, err := database.NewSQLite(&cfg.Database, ":memory:")
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
	})
	return a, db
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func register(t *testing.T, h http.Handler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodPost, "/auth/register", body, "")
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "bearer", resp["token_type"])
	require.NotEmpty(t, resp["access_token"])
	return resp["access_token"]
}

func TestApp_RegisterLoginListUnits(t *testing.T) {
	a, _ := newTestApp(t, nil)
	h := a.Handler()

	w := register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "a@x.com", created["email"])
	assert.Equal(t, "A", created["name"])
	assert.EqualValues(t, 1, created["id"])

	token := login(t, h, "a@x.com", "p")

	w = do(t, h, http.MethodGet, "/lojas", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestApp_RegisterDuplicateEmail(t *testing.T) {
	a, db := newTestApp(t, nil)
	h := a.Handler()

	body := map[string]any{"name": "A", "email": "dup@x.com", "password": "p"}
	require.Equal(t, http.StatusOK, register(t, h, body).Code)

	w := register(t, h, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"User with this email already exists"}`, w.Body.String())

	count, err := db.CountLogins(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestApp_RegisterMissingFields(t *testing.T) {
	a, _ := newTestApp(t, nil)
	w := register(t, a.Handler(), map[string]any{"email": "x@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApp_RegisterRejectsOverlongPassword(t *testing.T) {
	a, db := newTestApp(t, nil)
	w := register(t, a.Handler(), map[string]any{"name": "A", "email": "long@x.com", "password": strings.Repeat("a", 73)})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode[map[string]string](t, w)["detail"], "password must be at most 72 bytes")

	count, err := db.CountLogins(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestApp_LoginResolvesSameUser(t *testing.T) {
	a, _ := newTestApp(t, nil)
	h := a.Handler()

	w := register(t, h, map[string]any{"name": "Ana", "email": "ana@x.com", "password": "s3cret", "id_unidade": 2})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[map[string]any](t, w)

	token := login(t, h, "ana@x.com", "s3cret")
	w = do(t, h, http.MethodGet, "/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, created["id"], me["id"])
	assert.Equal(t, "ana@x.com", me["email"])
	assert.EqualValues(t, 2, me["id_unidade"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestApp_LoginErrorsAreIndistinguishable(t *testing.T) {
	a, _ := newTestApp(t, nil)
	h := a.Handler()
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)

	wrong := do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "nope"}, "")
	unknown := do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": "ghost@x.com", "password": "p"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.JSONEq(t, `{"detail":"Incorrect email or password"}`, wrong.Body.String())
}

func TestApp_TokenEndpointPasswordGrant(t *testing.T) {
	a, _ := newTestApp(t, nil)
	h := a.Handler()
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)

	form := url.Values{"username": {"a@x.com"}, "password": {"p"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]string](t, w)["access_token"]

	w = do(t, h, http.MethodGet, "/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_MissingTokenRejected(t *testing.T) {
	a, _ := newTestApp(t, nil)
	w := do(t, a.Handler(), http.MethodGet, "/lojas", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, w.Body.String())
}

func TestApp_TokenExpiry(t *testing.T) {
	a, _ := newTestApp(t, nil)
	h := a.Handler()
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)

	fresh, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: 30 * time.Minute})
	require.NoError(t, err)
	token, err := fresh.GenerateToken("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/auth/me", nil, token).Code)

	past, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: 30 * time.Minute},
		jwt.WithClock(func() time.Time { return time.Now().Add(-31 * time.Minute) }))
	require.NoError(t, err)
	stale, err := past.GenerateToken("a@x.com")
	require.NoError(t, err)

	w := do(t, h, http.MethodGet, "/auth/me", nil, stale)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Token has expired"}`, w.Body.String())
}

func seeded(t *testing.T) (*App, http.Handler) {
	t.Helper()
	a, db := newTestApp(t, nil)
	require.NoError(t, db.Seed(context.Background()))
	return a, a.Handler()
}

func TestApp_InvertedRangeIsEmpty(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)
	token := login(t, h, "a@x.com", "p")

	for _, path := range []string{
		"/metrics/monthly-revenue",
		"/metrics/orders-by-status",
		"/metrics/daily-revenue",
		"/insights/unit-ranking",
	} {
		w := do(t, h, http.MethodGet, path+"?start_date=2024-02-01&end_date=2024-01-01", nil, token)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String(), path)
	}
}

func TestApp_ScopedUserSeesOwnUnitOnly(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "Admin", "email": "admin@x.com", "password": "p"}).Code)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "Gerente", "email": "g@x.com", "password": "p", "id_unidade": 2}).Code)

	unitsOf := func(token string) map[string]bool {
		w := do(t, h, http.MethodGet, "/metrics/monthly-revenue?start_date=2024-01-01&end_date=2024-01-31", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		units := map[string]bool{}
		for _, row := range decode[[]map[string]any](t, w) {
			units[row["unidade"].(string)] = true
		}
		return units
	}

	all := unitsOf(login(t, h, "admin@x.com", "p"))
	assert.Len(t, all, 3)

	own := unitsOf(login(t, h, "g@x.com", "p"))
	assert.Equal(t, map[string]bool{"Savassi": true}, own)
}

func TestApp_UnitNamesAreRepaired(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)
	token := login(t, h, "a@x.com", "p")

	w := do(t, h, http.MethodGet, "/lojas", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "São Paulo")
	assert.NotContains(t, w.Body.String(), "SÃ£o")
}

func TestApp_ValidationErrors(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)
	token := login(t, h, "a@x.com", "p")

	cases := []struct {
		path   string
		detail string
	}{
		{"/metrics/daily-revenue", "Both start and end dates are required"},
		{"/metrics/daily-overview", "The date parameter is required"},
		{"/metrics/monthly-revenue?start_date=01/01/2024", "Invalid date for start_date: expected YYYY-MM-DD"},
		{"/metrics/top-products?limit=0", "limit must be an integer between 1 and 100"},
		{"/insights/unit-ranking?limit=abc", "limit must be an integer between 1 and 100"},
	}
	for _, tc := range cases {
		w := do(t, h, http.MethodGet, tc.path, nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.path)
		assert.Equal(t, tc.detail, decode[map[string]string](t, w)["detail"], tc.path)
	}
}

func TestApp_PedidoLookupAndExport(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)
	token := login(t, h, "a@x.com", "p")

	w := do(t, h, http.MethodGet, "/pedidos/1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	pedido := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, pedido["id"])
	assert.IsType(t, float64(0), pedido["valor_total"], "money is served as a JSON number")

	for _, path := range []string{"/pedidos/999999", "/pedidos/abc"} {
		w = do(t, h, http.MethodGet, path, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"detail":"Pedido not found"}`, w.Body.String(), path)
	}

	w = do(t, h, http.MethodGet, "/pedidos/1/export", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=pedido_1.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,id_cliente,id_unidade,data_pedido,status,valor_total", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
}

func TestApp_LocalizedErrors(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)
	token := login(t, h, "a@x.com", "p")

	req := httptest.NewRequest(http.MethodGet, "/pedidos/999999", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Lang", "pt")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Pedido não encontrado"}`, w.Body.String())
}

func TestApp_UnknownRoute(t *testing.T) {
	a, _ := newTestApp(t, nil)
	w := do(t, a.Handler(), http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, w.Body.String())
}

func TestApp_LoginRateLimited(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *config.APIServerConfig) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Login = config.RateLimitRule{Limit: 2, Window: time.Minute}
	})
	h := a.Handler()

	body := map[string]string{"email": "ghost@x.com", "password": "p"}
	for i := 0; i < 2; i++ {
		w := do(t, h, http.MethodPost, "/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := do(t, h, http.MethodPost, "/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = do(t, h, http.MethodGet, "/prometheus", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dashboard_rate_limited_requests_total{rule="login"} 1`)
}

func TestApp_MetricsExposeQueries(t *testing.T) {
	_, h := seeded(t)
	require.Equal(t, http.StatusOK, register(t, h, map[string]any{"name": "A", "email": "a@x.com", "password": "p"}).Code)
	token := login(t, h, "a@x.com", "p")
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/metrics/orders-by-status", nil, token).Code)

	w := do(t, h, http.MethodGet, "/prometheus", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_analytics_queries_total")
	assert.Contains(t, w.Body.String(), `route="/metrics/orders-by-status"`)
}

func TestApp_HealthAndOpenAPI(t *testing.T) {
	a, _ := newTestApp(t, nil)
	h := a.Handler()

	w := do(t, h, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]string](t, w)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])

	w = do(t, h, http.MethodGet, "/openapi.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[map[string]any](t, w)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/metrics/monthly-revenue")
	assert.Contains(t, paths, "/pedidos/{id}/export")
	assert.Contains(t, paths, "/auth/login")
}

func TestApp_RejectsInvalidConfig(t *testing.T) {
	cfg := newTestConfig()
	cfg.JWT.SecretKey = ""
	cfg.SetDefaults()
	db, err := database.NewSQLite(&cfg.Database, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = New(context.Background(), cfg, zap.NewNop(), db)
	assert.Error(t, err)
}

func TestApp_StartAndShutdown(t *testing.T) {
	cfg := newTestConfig()
	cfg.SetDefaults()
	db, err := database.NewSQLite(&cfg.Database, ":memory:")
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, zap.NewNop(), db)
	require.NoError(t, err)
	a.server.Addr = "127.0.0.1:0"

	require.NoError(t, a.Start())
	assert.True(t, a.scheduler.Running())

	resp, err := http.Get("http://" + a.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))
	assert.False(t, a.scheduler.Running())
}
