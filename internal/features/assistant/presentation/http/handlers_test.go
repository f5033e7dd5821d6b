package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/features/assistant/application"
	"devcraft-studio/backend/internal/features/assistant/domain"
	assistanthttp "devcraft-studio/backend/internal/features/assistant/presentation/http"
	"devcraft-studio/backend/internal/llm"
	"devcraft-studio/backend/internal/storage"
)

func TestChatRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := application.NewChatService(storage.NewTable[domain.Message](), llm.Unavailable{}, nil, nil)
	r := gin.New()
	r.POST("/api/ai/chat", assistanthttp.NewChatHandler(svc, nil).ChatHandler)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var reply domain.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.SessionID == "" || reply.Message != domain.UnavailableReply {
		t.Fatalf("reply = %+v", reply)
	}

	for _, body := range []string{`{}`, `{"message":"  "}`, `{"message":42}`} {
		if w := post(body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s status = %d, want 400", body, w.Code)
		}
	}
}
