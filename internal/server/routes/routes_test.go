package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth/gothic"

	"github.com/fr0stylo/lacquer/internal/adapters/colordistance"
	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	appservices "github.com/fr0stylo/lacquer/internal/app/services"
	"github.com/fr0stylo/lacquer/internal/db"
)

const (
	testUserID  int64 = 7
	testAdminID int64 = 9
	testQueue         = "routes-test"
)

type routesFixture struct {
	e     *echo.Echo
	store *sqlite.Store
}

func initAuthStoreForTests() {
	store := sessions.NewCookieStore([]byte("test-session-secret-32-bytes-long"))
	store.Options = &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode}
	gothic.Store = store
}

// newRoutesFixture wires every route over a fresh database. bypassUserID
// plays the role of the configured dev auth user.
func newRoutesFixture(t *testing.T, bypassUserID int64) routesFixture {
	t.Helper()
	initAuthStoreForTests()

	database, err := db.New(filepath.Join(t.TempDir(), "routes-test"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	store := sqlite.NewStore(database)

	captures := appservices.NewCaptureService(store, appservices.NewConfidenceMatcher(colordistance.CIEDE2000), appservices.CaptureOptions{})
	jobs := appservices.NewJobService(store, store, testQueue)
	requireAuth := RequireAuth(bypassUserID)
	requireAdmin := RequireAdmin(func(userID int64) bool { return userID == testAdminID })

	e := echo.New()
	NewAuthRoutes(store, true).RegisterRoutes(e)
	NewCaptureRoutes(captures, requireAuth).RegisterRoutes(e)
	NewIngestionRoutes(jobs, requireAuth, requireAdmin).RegisterRoutes(e)
	NewHealthRoutes(database).RegisterRoutes(e)
	return routesFixture{e: e, store: store}
}

func (f routesFixture) do(t *testing.T, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		payload = encoded
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestDevLoginEstablishesSession(t *testing.T) {
	f := newRoutesFixture(t, 0)

	if rec := f.do(t, http.MethodGet, "/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	form := url.Values{"email": {"ada@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/dev/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dev login failed: %d %s", rec.Code, rec.Body.String())
	}
	login := decodeBody[authUserResponse](t, rec)
	if login.Nickname != "ada" || login.ID == "" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie")
	}
	me := f.do(t, http.MethodGet, "/me", nil, cookies...)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", me.Code)
	}
	if got := decodeBody[authUserResponse](t, me); got.ID != login.ID || got.Email != "ada@example.com" {
		t.Fatalf("unexpected /me response: %+v", got)
	}

	start := f.do(t, http.MethodPost, "/capture/start", map[string]string{"brand": "Essie"}, cookies...)
	if start.Code != http.StatusCreated {
		t.Fatalf("session cookie should authorize capture: %d %s", start.Code, start.Body.String())
	}
}

func TestDevLoginHiddenWhenDisabled(t *testing.T) {
	initAuthStoreForTests()
	e := echo.New()
	NewAuthRoutes(nil, false).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/auth/dev/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("dev login must not be served when disabled")
	}
}

func TestHealthz(t *testing.T) {
	f := newRoutesFixture(t, 0)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody[map[string]string](t, rec); got["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", got)
	}
}
