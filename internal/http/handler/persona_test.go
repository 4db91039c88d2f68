package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/persona"
)

func TestPersonaHandler_ShowReturnsDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store, err := persona.New(t.TempDir())
	if err != nil {
		t.Fatalf("persona.New: %v", err)
	}
	h := NewPersonaHandler(store)

	router := gin.New()
	router.GET("/v1/persona", h.Show)

	req := httptest.NewRequest(http.MethodGet, "/v1/persona", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"persona":"unknown"`) {
		t.Fatalf("expected default persona unknown, got: %s", w.Body.String())
	}
}

func TestPersonaHandler_SetAndClearOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store, err := persona.New(t.TempDir())
	if err != nil {
		t.Fatalf("persona.New: %v", err)
	}
	h := NewPersonaHandler(store)

	router := gin.New()
	router.GET("/v1/persona", h.Show)
	router.POST("/v1/persona/override", h.SetOverride)
	router.DELETE("/v1/persona/override", h.ClearOverride)

	setReq := httptest.NewRequest(http.MethodPost, "/v1/persona/override", strings.NewReader(`{"persona": "power-nerd"}`))
	setReq.Header.Set("Content-Type", "application/json")
	setW := httptest.NewRecorder()
	router.ServeHTTP(setW, setReq)

	if setW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", setW.Code, setW.Body.String())
	}
	if !strings.Contains(setW.Body.String(), `"persona":"power-nerd"`) {
		t.Fatalf("expected overridden persona, got: %s", setW.Body.String())
	}

	clearReq := httptest.NewRequest(http.MethodDelete, "/v1/persona/override", nil)
	clearW := httptest.NewRecorder()
	router.ServeHTTP(clearW, clearReq)

	if clearW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", clearW.Code, clearW.Body.String())
	}
	if !strings.Contains(clearW.Body.String(), `"persona":"unknown"`) {
		t.Fatalf("expected persona reset after clearing override, got: %s", clearW.Body.String())
	}
}

func TestPersonaHandler_SetOverrideRejectsUnknownPersona(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store, err := persona.New(t.TempDir())
	if err != nil {
		t.Fatalf("persona.New: %v", err)
	}
	h := NewPersonaHandler(store)

	router := gin.New()
	router.POST("/v1/persona/override", h.SetOverride)

	req := httptest.NewRequest(http.MethodPost, "/v1/persona/override", strings.NewReader(`{"persona": "not-a-real-persona"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
