package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/techwomen-moldova/mentordesk/internal/engine"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/internal/profiles"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := profiles.NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	h := &Handler{
		Publisher: profiles.NewPublisher(repo, logging.Discard()),
		Profiles:  repo,
		Store:     engine.NewMemStore(nil, nil),
		Log:       logging.Discard(),
	}
	r := gin.New()
	Register(r, h)
	return r, h
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ana() map[string]any {
	return map[string]any{"name": "Ana", "email": "a@x.md"}
}

func TestPublish_AddThenDuplicate(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "POST", PublishPath, map[string]any{"profile": ana(), "role": "mentor", "action": "add"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected CORS header, got %q", got)
	}

	var res schema.PublishResult
	json.Unmarshal(w.Body.Bytes(), &res)
	if !res.Success || res.TotalProfiles == nil || *res.TotalProfiles != 1 {
		t.Errorf("Unexpected result: %+v", res)
	}
	if res.Profile == nil || res.Profile.Status != "approved" || res.Profile.Image != profiles.PlaceholderImage {
		t.Errorf("Defaults not applied: %+v", res.Profile)
	}

	w = do(r, "POST", PublishPath, map[string]any{"profile": ana(), "role": "mentor", "action": "add"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	var e schema.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &e)
	if e.Error != "Internal server error" || e.Details != "Profile with this email already exists" {
		t.Errorf("Unexpected error body: %+v", e)
	}
}

func TestPublish_BadRequests(t *testing.T) {
	r, _ := setupTestRouter(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing role", map[string]any{"profile": ana()}, "Profile and role are required"},
		{"missing profile", map[string]any{"role": "mentor"}, "Profile and role are required"},
		{"bad role", map[string]any{"profile": ana(), "role": "admin"}, "Role must be mentor or mentee"},
		{"bad action", map[string]any{"profile": ana(), "role": "mentee", "action": "merge"}, "Unsupported action: merge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "POST", "/api/profiles", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			var e schema.ErrorResponse
			json.Unmarshal(w.Body.Bytes(), &e)
			if e.Error != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, e.Error)
			}
		})
	}

	req, _ := http.NewRequest("POST", PublishPath, bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed body, got %d", w.Code)
	}
}

func TestPublish_MethodNotAllowed(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, m := range []string{"GET", "PUT", "DELETE"} {
		w := do(r, m, PublishPath, nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", m, w.Code)
		}
		var e schema.ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &e)
		if e.Error != "Method not allowed" {
			t.Errorf("%s: unexpected body %s", m, w.Body.String())
		}
	}
}

func TestPreflight(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "OPTIONS", PublishPath, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header on preflight")
	}
}

func TestPublish_UpdateAndDelete(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "POST", "/api/profiles", map[string]any{"profile": ana(), "role": "mentee"})
	var added schema.PublishResult
	json.Unmarshal(w.Body.Bytes(), &added)
	id := added.Profile.ID

	w = do(r, "POST", "/api/profiles", map[string]any{
		"profile": map[string]any{"id": id, "title": "Student"},
		"role":    "mentee",
		"action":  "update",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(r, "POST", "/api/profiles", map[string]any{"profile": map[string]any{"id": "nope"}, "role": "mentee", "action": "delete"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("delete missing: expected 500, got %d", w.Code)
	}

	w = do(r, "POST", "/api/profiles", map[string]any{"profile": map[string]any{"id": id}, "role": "mentee", "action": "delete"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	var deleted schema.PublishResult
	json.Unmarshal(w.Body.Bytes(), &deleted)
	if deleted.DeletedProfile == nil || deleted.DeletedProfile.Title != "Student" || *deleted.TotalProfiles != 0 {
		t.Errorf("Unexpected delete result: %s", w.Body.String())
	}
}

func TestCollections(t *testing.T) {
	r, _ := setupTestRouter(t)
	do(r, "POST", PublishPath, map[string]any{"profile": ana(), "role": "mentor"})

	w := do(r, "GET", "/data/mentors.json", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var list []schema.Profile
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Email != "a@x.md" {
		t.Errorf("Unexpected mentors: %v", list)
	}

	w = do(r, "GET", "/api/profiles/mentee", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("Expected empty mentee list, got %d %s", w.Code, w.Body.String())
	}

	if w := do(r, "GET", "/data/other.json", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := do(r, "GET", "/api/profiles/admin", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestStateAPI(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "PUT", "/api/state/processedSubmissions", []string{"sub-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = do(r, "GET", "/api/state/processedSubmissions", nil)
	var got struct {
		Value []string `json:"value"`
	}
	json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.Value) != 1 || got.Value[0] != "sub-1" {
		t.Errorf("Expected [sub-1], got %s", w.Body.String())
	}

	w = do(r, "GET", "/api/state", nil)
	var keys []string
	json.Unmarshal(w.Body.Bytes(), &keys)
	if len(keys) != 1 || keys[0] != "processedSubmissions" {
		t.Errorf("Unexpected keys %v", keys)
	}

	if w := do(r, "DELETE", "/api/state/processedSubmissions", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := do(r, "GET", "/api/state/processedSubmissions", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}
