package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/features/auth/application"
	"devcraft-studio/backend/internal/features/auth/domain"
	authhttp "devcraft-studio/backend/internal/features/auth/presentation/http"
	"devcraft-studio/backend/internal/storage"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := application.NewAuthService(storage.NewTable[domain.User](), "secret", nil)
	if err := svc.SeedAdmin("admin", "password123", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := authhttp.NewAuthHandler(svc, nil)

	r := gin.New()
	r.POST("/api/register", h.RegisterHandler)
	r.POST("/api/login", h.LoginHandler)
	r.POST("/api/logout", h.LogoutHandler)
	r.GET("/api/user", h.RequireUser(), h.UserHandler)
	r.GET("/admin", h.RequireUser(), h.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func send(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var session domain.Session
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return session.Token
}

func TestLoginAndAdminGuard(t *testing.T) {
	r := newRouter(t)

	w := send(r, http.MethodPost, "/api/login", `{"username":"admin","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatalf("bad login = %d %s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodPost, "/api/login", `{"username":"admin"}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing password status = %d", w.Code)
	}

	w = send(r, http.MethodPost, "/api/login", `{"username":"admin","password":"password123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("response leaks password: %s", w.Body.String())
	}
	admin := tokenOf(t, w)

	w = send(r, http.MethodPost, "/api/register", `{"username":"ada","password":"long-enough"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	regular := tokenOf(t, w)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"user without token", "/api/user", "", http.StatusUnauthorized},
		{"user with garbage", "/api/user", "garbage", http.StatusUnauthorized},
		{"user with token", "/api/user", regular, http.StatusOK},
		{"admin without token", "/admin", "", http.StatusUnauthorized},
		{"admin as regular user", "/admin", regular, http.StatusUnauthorized},
		{"admin as admin", "/admin", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := send(r, http.MethodGet, tt.path, "", tt.token); w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"short password", `{"username":"ada","password":"short"}`, http.StatusBadRequest},
		{"bad email", `{"username":"ada","password":"long-enough","email":"nope"}`, http.StatusBadRequest},
		{"taken", `{"username":"Admin","password":"long-enough"}`, http.StatusBadRequest},
		{"ok", `{"username":"ada","password":"long-enough","email":"ada@example.com"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := send(r, http.MethodPost, "/api/register", tt.body, ""); w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if w := send(r, http.MethodPost, "/api/logout", "", ""); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
}
