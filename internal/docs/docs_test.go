// ABOUTME: Tests for the rendered landing page.
// ABOUTME: Checks version substitution, HTML structure, and method handling.

package docs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewHandlerRendersPage(t *testing.T) {
	h, err := NewHandler("0.9.1")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "<h1") {
		t.Error("expected rendered markdown headings")
	}
	if !strings.Contains(body, "0.9.1") {
		t.Error("expected version to be substituted")
	}
	if strings.Contains(body, "{{version}}") {
		t.Error("version placeholder survived rendering")
	}
	if !strings.Contains(body, "<table>") {
		t.Error("expected endpoint table to render as HTML")
	}
	if !strings.Contains(body, "generate_personas") {
		t.Error("expected tool catalog summary")
	}
}

func TestHandlerHead(t *testing.T) {
	h, err := NewHandler("dev")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Error("HEAD must not write a body")
	}
	if rr.Header().Get("Content-Length") == "" {
		t.Error("expected Content-Length header")
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h, err := NewHandler("dev")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}
