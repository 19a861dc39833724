package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant_system/internal/domain"
	"restaurant_system/internal/session"

	"github.com/gin-gonic/gin"
)

func setupRouter(t *testing.T, roles ...string) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mgr := session.NewManager(session.NewMemoryBackend(), session.DefaultTTL)
	r := gin.New()
	r.Use(RequestLogger(), MetricsMiddleware(), CORSMiddleware())
	r.GET("/protected", SessionAuthMiddleware(mgr, roles...), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username, "token": SessionToken(c)})
	})
	return r, mgr
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if body.OK {
		t.Errorf("ok = true in error body")
	}
	return body.Error
}

func TestSessionAuthMiddleware(t *testing.T) {
	r, mgr := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/protected", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "Unauthorized. Please login first." {
		t.Errorf("message = %q", msg)
	}

	if w := doRequest(r, http.MethodGet, "/protected", "bogus"); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown token: status %d", w.Code)
	}

	token, _ := mgr.Create(context.Background(), domain.PublicUser{Username: "waiter", Role: domain.RoleEmployee})
	w = doRequest(r, http.MethodGet, "/protected", token)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status %d body %s", w.Code, w.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["username"] != "waiter" || body["token"] != token {
		t.Errorf("context values = %v", body)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
}

func TestSessionAuthMiddlewareRoles(t *testing.T) {
	r, mgr := setupRouter(t, domain.RoleAdmin)
	ctx := context.Background()

	employee, _ := mgr.Create(ctx, domain.PublicUser{Username: "waiter", Role: domain.RoleEmployee})
	w := doRequest(r, http.MethodGet, "/protected", employee)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee: status %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "Forbidden for this role." {
		t.Errorf("message = %q", msg)
	}

	admin, _ := mgr.Create(ctx, domain.PublicUser{Username: "Admin", Role: domain.RoleAdmin})
	if w := doRequest(r, http.MethodGet, "/protected", admin); w.Code != http.StatusOK {
		t.Errorf("admin: status %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupRouter(t)
	w := doRequest(r, http.MethodOptions, "/protected", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,PUT,POST,OPTIONS" {
		t.Errorf("allow-methods = %q", got)
	}
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	r, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}
