package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/config"
	"github.com/acctmgr/acctmgr/internal/daemon"
	"github.com/acctmgr/acctmgr/internal/db/models"
	"github.com/acctmgr/acctmgr/internal/web"
	"github.com/acctmgr/acctmgr/internal/web/session"
)

const (
	adminPassword = "Adm1nPassword"
	userPassword  = "Secr3tPass"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, daemon.Migrate(db))

	hash, err := models.HashPassword(adminPassword)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Username: "admin", Password: hash, Active: true, IsAdmin: true}).Error)

	cfg := &config.Config{
		DevMode: true,
		Title:   "acctmgr-test",
		Webserver: config.Webserver{
			Port:    8080,
			URL:     "http://localhost:8080",
			Session: config.Session{ExpiryTime: time.Hour},
		},
	}

	session.Init(nil)

	deps, err := daemon.NewDeps(cfg, db)
	require.NoError(t, err)

	svc, err := web.New(deps)
	require.NoError(t, err)

	return &testServer{t: t, app: svc.App, db: db}
}

func (s *testServer) do(method, path, cookie string, body any) (*http.Response, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)

	var env envelope
	if resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&env))
	}

	return resp, env
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()

	resp, env := s.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(s.t, fiber.StatusOK, resp.StatusCode, env.Message)

	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}

	s.t.Fatal("login did not set a session cookie")

	return ""
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

// registerUser mints and distributes a month code as admin and signs up with it.
func (s *testServer) registerUser(adminCookie, username string) string {
	s.t.Helper()

	resp, env := s.do(fiber.MethodPost, "/api/activation/init", adminCookie, map[string]any{
		"items": []map[string]int{{"type": 1, "count": 1}},
	})
	require.Equal(s.t, fiber.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(fiber.MethodPost, "/api/activation/distribute", adminCookie, map[string]int{"type": 1, "count": 1})
	require.Equal(s.t, fiber.StatusOK, resp.StatusCode, env.Message)

	codes := decode[[]string](s.t, env)
	require.Len(s.t, codes, 1)

	resp, env = s.do(fiber.MethodPost, "/api/user/register", "", map[string]string{
		"username": username, "password": userPassword, "activation_code": codes[0],
	})
	require.Equal(s.t, fiber.StatusOK, resp.StatusCode, env.Message)

	return codes[0]
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(fiber.MethodGet, web.CheckAlivePath, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, _ = s.do(fiber.MethodGet, web.MetricsPath, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "acctmgr_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid username or password", env.Message)

	resp, env = s.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "whatever"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid username or password", env.Message)

	resp, env = s.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "Password")

	cookie := s.login("admin", adminPassword)

	resp, env = s.do(fiber.MethodGet, "/api/user", cookie, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	resp, _ = s.do(fiber.MethodPost, "/api/auth/logout", cookie, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env = s.do(fiber.MethodGet, "/api/user", cookie, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestRegistrationAndProfile(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", adminPassword)

	code := s.registerUser(admin, "alice")

	// a code works once
	resp, env := s.do(fiber.MethodPost, "/api/user/register", "", map[string]string{
		"username": "bob", "password": userPassword, "activation_code": code,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = s.do(fiber.MethodPost, "/api/user/register", "", map[string]string{
		"username": "bob", "password": userPassword, "activation_code": "NOPE",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	alice := s.login("alice", userPassword)

	resp, env = s.do(fiber.MethodGet, "/api/user", alice, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	profile := decode[map[string]any](t, env)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, code, profile["activation_code"])
	assert.NotNil(t, profile["expires_at"])

	resp, env = s.do(fiber.MethodPut, "/api/user", alice, map[string]string{"phone": "13812345678", "email": "a@example.com"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "13812345678", decode[map[string]any](t, env)["phone"])

	resp, _ = s.do(fiber.MethodPut, "/api/user", alice, map[string]string{"email": "not-an-email"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPut, "/api/user", alice, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPut, "/api/user/password", alice, map[string]string{
		"old_password": "Wrong1234", "new_password": "N3wPassword",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPut, "/api/user/password", alice, map[string]string{
		"old_password": userPassword, "new_password": "N3wPassword",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	s.login("alice", "N3wPassword")
}

func TestSettingsRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", adminPassword)
	s.registerUser(admin, "carol")
	carol := s.login("carol", userPassword)

	resp, env := s.do(fiber.MethodGet, "/api/settings/catalog", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, env), 4)

	resp, _ = s.do(fiber.MethodGet, "/api/settings", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, env = s.do(fiber.MethodGet, "/api/settings", carol, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[map[string][]map[string]any](t, env)["groups"], 4)

	resp, env = s.do(fiber.MethodPost, "/api/settings/update", carol, map[string]any{"setting_key": 101, "setting_value": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	one := decode[map[string]any](t, env)
	assert.Equal(t, false, one["setting_value"])
	assert.Equal(t, false, one["is_default"])

	resp, env = s.do(fiber.MethodGet, "/api/settings/101", carol, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode[map[string]any](t, env)["setting_value"])

	resp, env = s.do(fiber.MethodPost, "/api/settings/update", carol, map[string]any{"setting_key": 301, "setting_value": "many"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = s.do(fiber.MethodPost, "/api/settings/update", carol, map[string]any{"setting_key": 999, "setting_value": 1})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/settings/update", carol, map[string]any{"setting_key": 301})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/settings/update", carol, map[string]any{"setting_key": 301, "setting_value": nil})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(fiber.MethodGet, "/api/settings/group/3", carol, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), decode[map[string]any](t, env)["group_code"])

	resp, _ = s.do(fiber.MethodGet, "/api/settings/group/9", carol, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(fiber.MethodGet, "/api/settings/abc", carol, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, "/api/settings/101/reset", carol, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reset := decode[map[string]any](t, env)
	assert.Equal(t, true, reset["setting_value"])
	assert.Equal(t, true, reset["is_default"])
}

func TestSettingKeepsLargeIntegers(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", adminPassword)
	s.registerUser(admin, "gina")
	gina := s.login("gina", userPassword)

	// 2^53 + 1 is not representable as float64
	body := json.RawMessage(`{"setting_key":301,"setting_value":9007199254740993}`)

	resp, env := s.do(fiber.MethodPost, "/api/settings/update", gina, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), `"setting_value":9007199254740993`)

	var row models.SettingOverride
	require.NoError(t, s.db.Where("setting_code = ?", 301).First(&row).Error)
	assert.Equal(t, "9007199254740993", row.Value)

	resp, env = s.do(fiber.MethodGet, "/api/settings/301", gina, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"setting_value":9007199254740993`)

	// fractions and out of range integers are rejected, not rounded
	for _, raw := range []string{"2.5", "9223372036854775808"} {
		body = json.RawMessage(`{"setting_key":301,"setting_value":` + raw + `}`)
		resp, _ = s.do(fiber.MethodPost, "/api/settings/update", gina, body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, raw)
	}
}

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", adminPassword)
	s.registerUser(admin, "dave")
	s.registerUser(admin, "erin")
	dave := s.login("dave", userPassword)
	erin := s.login("erin", userPassword)

	resp, env := s.do(fiber.MethodPost, "/api/accounts/create", dave, map[string]string{"name": "main", "platform_password": "secret"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	assert.NotContains(t, string(env.Data), "secret")

	id := uint64(decode[map[string]any](t, env)["id"].(float64))
	base := "/api/accounts/" + jsonNumber(id)

	resp, _ = s.do(fiber.MethodPost, "/api/accounts/create", dave, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, "/api/accounts/pageList", dave, map[string]any{"page": 1, "size": 10})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decode[map[string]any](t, env)["total"])

	// account inherits the user's value until it overrides it
	resp, _ = s.do(fiber.MethodPost, "/api/settings/update", dave, map[string]any{"setting_key": 101, "setting_value": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, base+"/settings/update", dave, map[string]any{"setting_key": 301, "setting_value": 8})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, float64(8), decode[map[string]any](t, env)["setting_value"])

	resp, env = s.do(fiber.MethodGet, base+"/settings", dave, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	all := decode[struct {
		Groups []struct {
			Code     int              `json:"group_code"`
			Settings []map[string]any `json:"settings"`
		} `json:"groups"`
	}](t, env)
	values := map[float64]any{}
	for _, g := range all.Groups {
		for _, st := range g.Settings {
			values[st["setting_key"].(float64)] = st["setting_value"]
		}
	}

	assert.Equal(t, false, values[101])
	assert.Equal(t, float64(8), values[301])

	// other users can not reach the account
	resp, _ = s.do(fiber.MethodGet, base+"/settings", erin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/accounts/update", erin, map[string]any{"id": id, "name": "stolen"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, base+"/settings/reset?setting_key=301", dave, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), decode[map[string]any](t, env)["setting_value"])

	resp, _ = s.do(fiber.MethodPost, base+"/settings/update", dave, map[string]any{"setting_key": 302, "setting_value": 5})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/accounts/delete", dave, map[string]any{"id": id})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var overrides int64
	require.NoError(t, s.db.Model(&models.SettingOverride{}).Where("owner_type = ?", 2).Count(&overrides).Error)
	assert.Zero(t, overrides)

	resp, _ = s.do(fiber.MethodGet, base+"/settings", dave, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestActivationRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", adminPassword)
	s.registerUser(admin, "frank")
	frank := s.login("frank", userPassword)

	resp, _ := s.do(fiber.MethodPost, "/api/activation/init", frank, map[string]any{
		"items": []map[string]int{{"type": 0, "count": 1}},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := s.do(fiber.MethodPost, "/api/activation/init", admin, map[string]any{
		"items": []map[string]int{{"type": 0, "count": 2}, {"type": 3, "count": 1}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	batch := decode[struct {
		Total   int            `json:"total_count"`
		Summary map[string]int `json:"summary"`
	}](t, env)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, map[string]int{"day": 2, "permanent": 1}, batch.Summary)

	resp, _ = s.do(fiber.MethodPost, "/api/activation/init", admin, map[string]any{
		"items": []map[string]int{{"type": 0, "count": 1}, {"type": 0, "count": 1}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, "/api/activation/get", admin, map[string]int{"type": 0, "count": 5})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	resp, _ = s.do(fiber.MethodPost, "/api/activation/distribute", admin, map[string]int{"type": 0, "count": 5})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/activation/distribute", admin, map[string]int{"count": 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, "/api/activation/distribute", admin, map[string]int{"type": 0, "count": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	code := decode[[]string](t, env)[0]

	resp, env = s.do(fiber.MethodGet, "/api/activation/"+code, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "distributed", decode[map[string]any](t, env)["status_name"])

	resp, _ = s.do(fiber.MethodPost, "/api/activation/activate?activation_code="+code, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/activation/activate?activation_code="+code, admin, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/activation/invalidate", admin, map[string]string{"activation_code": code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(fiber.MethodPost, "/api/activation/invalidate", admin, map[string]string{"activation_code": code})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(fiber.MethodGet, "/api/activation/MISSING", admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, env = s.do(fiber.MethodPost, "/api/activation/pageList", admin, map[string]any{"type": 0, "page": 1, "size": 10})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, float64(2), decode[map[string]any](t, env)["total"])

	resp, _ = s.do(fiber.MethodPost, "/api/activation/pageList", admin, map[string]any{
		"distributed_at_start": time.Now().Format(time.RFC3339),
		"distributed_at_end":   time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(fiber.MethodGet, "/api/activation/export?type=0", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")

	book, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)

	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3) // header and two day codes
}

func jsonNumber(n uint64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}
