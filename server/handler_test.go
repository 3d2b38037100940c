package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func echoRoutes() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"/api/echo": func(req *http.Request, msg map[string]any) any {
			return map[string]any{"echo": msg}
		},
		"/api/nil": func(req *http.Request, msg map[string]any) any {
			return nil
		},
		"/api/panic": func(req *http.Request, msg map[string]any) any {
			panic("boom")
		},
	}
}

func TestRequestHandler_PostRoundTrip(t *testing.T) {
	h := NewRequestHandler(echoRoutes())

	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"kernel":"Huber","scale":0.05}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q, want *", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	echo, ok := body["echo"].(map[string]any)
	if !ok {
		t.Fatalf("echo field missing in %v", body)
	}
	if echo["kernel"] != "Huber" {
		t.Errorf("echoed kernel = %v, want Huber", echo["kernel"])
	}
	if echo["scale"] != 0.05 {
		t.Errorf("echoed scale = %v, want 0.05", echo["scale"])
	}
}

func TestRequestHandler_GetWithoutBody(t *testing.T) {
	var seen map[string]any
	h := NewRequestHandler(map[string]HandlerFunc{
		"/api/status": func(req *http.Request, msg map[string]any) any {
			seen = msg
			return map[string]any{"ok": true}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil {
		t.Fatal("handler should receive an empty message, not nil")
	}
	if len(seen) != 0 {
		t.Errorf("message = %v, want empty", seen)
	}
}

func TestRequestHandler_MalformedJSONTreatedAsEmpty(t *testing.T) {
	var seen map[string]any
	h := NewRequestHandler(map[string]HandlerFunc{
		"/api/echo": func(req *http.Request, msg map[string]any) any {
			seen = msg
			return map[string]any{"ok": true}
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"broken`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Malformed bodies are logged and replaced, never rejected.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(seen) != 0 {
		t.Errorf("message = %v, want empty for malformed body", seen)
	}
}

func TestRequestHandler_UnknownPath(t *testing.T) {
	h := NewRequestHandler(echoRoutes())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRequestHandler_MethodNotAllowed(t *testing.T) {
	h := NewRequestHandler(echoRoutes())

	req := httptest.NewRequest(http.MethodPut, "/api/echo", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRequestHandler_NilResultIsNotFound(t *testing.T) {
	h := NewRequestHandler(echoRoutes())

	req := httptest.NewRequest(http.MethodGet, "/api/nil", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for nil handler result", rec.Code)
	}
}

func TestRequestHandler_PanicBecomesInternalError(t *testing.T) {
	h := NewRequestHandler(echoRoutes())

	req := httptest.NewRequest(http.MethodPost, "/api/panic", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when the handler panics", rec.Code)
	}
}
