package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubmitProblemPostsTrimmedPayload(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL)
	status, err := client.SubmitProblem(context.Background(), "  \n{\"title\":\"Two Sum\"}\n  ")
	if err != nil {
		t.Fatalf("SubmitProblem failed: %v", err)
	}

	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST, got %s", gotMethod)
	}
	if gotPath != "/init_task" {
		t.Errorf("Expected path /init_task, got %s", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected application/json content type, got %s", gotContentType)
	}
	if gotBody["problem"] != "{\"title\":\"Two Sum\"}" {
		t.Errorf("Expected trimmed problem payload, got %q", gotBody["problem"])
	}
}

func TestSubmitProblemReturnsNonOKStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL)
	status, err := client.SubmitProblem(context.Background(), "problem text")
	if err != nil {
		t.Fatalf("Expected a received response, not an error: %v", err)
	}
	if status != http.StatusInternalServerError {
		t.Errorf("Expected status 500 to propagate, got %d", status)
	}
}

func TestSubmitProblemTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := New(srv.URL)
	status, err := client.SubmitProblem(context.Background(), "problem text")
	if err == nil {
		t.Fatal("Expected transport error when backend is unreachable")
	}
	if status != 0 {
		t.Errorf("Expected zero status on transport error, got %d", status)
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	client := New("http://localhost:8000/")
	if client.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected trailing slash trimmed, got %q", client.BaseURL)
	}
}
