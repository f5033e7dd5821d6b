package http_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/features/config/application"
	confighttp "devcraft-studio/backend/internal/features/config/presentation/http"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := config.NewAppConfigService(filepath.Join(t.TempDir(), "app_config.yaml"), nil)
	h := confighttp.NewAppConfigHandler(application.NewConfigService(store), nil)

	r := gin.New()
	r.GET("/api/config/app", h.GetAppConfigHandler)
	r.POST("/api/config/app", h.SaveAppConfigHandler)
	return r
}

func TestAppConfigHandlers(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"studio_context":"x","model_params":{"temperature":0.5,"max_tokens":300}}`, http.StatusOK},
		{"temperature out of range", `{"model_params":{"temperature":3}}`, http.StatusBadRequest},
		{"unknown step key", `{"step_prompts":{"9":"nope"}}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/config/app", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config/app", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"studio_context":"x"`) {
		t.Fatalf("saved config not returned: %s", w.Body.String())
	}
}
