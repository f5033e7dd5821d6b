package infrastructure_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/features/intake/infrastructure"
	"devcraft-studio/backend/internal/features/intake/wizard"
)

var (
	_ wizard.Enricher = (*infrastructure.APIClient)(nil)
	_ wizard.Gateway  = (*infrastructure.APIClient)(nil)
)

func TestAPIClient_FetchSuggestions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ai/suggestions" {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			http.Error(w, "content type "+ct, http.StatusUnsupportedMediaType)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"suggestions":[{"suggestion":"Add a blog","category":"Content","impact":"Medium"}]}`))
	}))
	defer srv.Close()

	list, err := infrastructure.NewAPIClient(srv.URL+"/").FetchSuggestions(context.Background(), domain.ProjectWebsite, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []domain.Suggestion{{Suggestion: "Add a blog", Category: "Content", Impact: domain.ImpactMedium}}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
	wantBody := map[string]any{"projectType": "website", "selectedFeatures": []any{}}
	if diff := cmp.Diff(wantBody, got); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.ProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !req.TermsAccepted {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid data","details":[{"field":"termsAccepted","message":"You must accept the terms"}]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Submission{ID: 7, ProjectRequest: req})
	}))
	defer srv.Close()
	client := infrastructure.NewAPIClient(srv.URL)

	sub, err := client.Submit(context.Background(), domain.ProjectRequest{Name: "Ada", TermsAccepted: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.ID != 7 || sub.Name != "Ada" {
		t.Fatalf("submission = %+v", sub)
	}

	_, err = client.Submit(context.Background(), domain.ProjectRequest{Name: "Ada"})
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if verrs[0].Field != "termsAccepted" {
		t.Fatalf("errors = %v", verrs)
	}
}

func TestAPIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := infrastructure.NewAPIClient(srv.URL).Submit(context.Background(), domain.ProjectRequest{})
	var apiErr *infrastructure.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v", err)
	}
}
