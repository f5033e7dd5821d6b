package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/llm"
	"devcraft-studio/backend/internal/server"
)

func newApp(t *testing.T) *server.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	settings := &config.Settings{
		AppConfigPath: filepath.Join(t.TempDir(), "app_config.yaml"),
		JWTSecret:     "test-secret",
		AdminUsername: "admin",
		AdminPassword: "password123",
		SubmitTimeout: time.Second,
	}
	app, err := server.New(settings, llm.Unavailable{}, nil, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Wait)
	return app
}

func call(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r := newApp(t).Router()
	w := call(r, http.MethodGet, "/ping", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("ping = %d %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	r := newApp(t).Router()

	w := call(r, http.MethodPost, "/api/login", `{"username":"admin","password":"password123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	w = call(r, http.MethodPost, "/api/register", `{"username":"client","password":"long-enough"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}
	var client struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &client); err != nil {
		t.Fatalf("decode: %v", err)
	}

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/project-requests"},
		{http.MethodGet, "/api/project-requests/1"},
		{http.MethodGet, "/api/website-analyses"},
		{http.MethodGet, "/api/config/app"},
	}
	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			if w := call(r, p.method, p.path, "", ""); w.Code != http.StatusUnauthorized {
				t.Errorf("anonymous status = %d, want 401", w.Code)
			}
			if w := call(r, p.method, p.path, "", client.Token); w.Code != http.StatusUnauthorized {
				t.Errorf("client status = %d, want 401", w.Code)
			}
			if w := call(r, p.method, p.path, "", session.Token); w.Code == http.StatusUnauthorized {
				t.Errorf("admin was rejected")
			}
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	r := newApp(t).Router()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"catalog", http.MethodGet, "/api/intake/catalog", "", http.StatusOK},
		{"start session", http.MethodPost, "/api/intake/sessions", "", http.StatusCreated},
		{"suggestions", http.MethodPost, "/api/ai/suggestions", `{"projectType":"website","selectedFeatures":[]}`, http.StatusOK},
		{"chat", http.MethodPost, "/api/ai/chat", `{"message":"hello"}`, http.StatusOK},
		{"analysis", http.MethodPost, "/api/website-analyses", `{"websiteUrl":"https://a.example.com","email":"a@example.com"}`, http.StatusCreated},
		{"invalid request", http.MethodPost, "/api/project-requests", `{"projectType":"website"}`, http.StatusBadRequest},
		{"user without token", http.MethodGet, "/api/user", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := call(r, tt.method, tt.path, tt.body, ""); w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
