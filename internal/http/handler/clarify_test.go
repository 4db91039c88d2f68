package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/clarify"
	"anna.local/annad/internal/facts"
	"anna.local/annad/internal/probe"
)

func TestClarifyHandler_ResolvesSelectedOption(t *testing.T) {
	gin.SetMode(gin.TestMode)

	factsStore, err := facts.New(t.TempDir())
	if err != nil {
		t.Fatalf("facts.New: %v", err)
	}
	engine := clarify.New(probe.NewExecutor(probe.NewCatalog(), probe.NewCache(), probe.ExecRunner{}), factsStore)

	pending := NewPendingClarifications()
	menu := clarify.BuildMenu("which editor?", "preferred_editor",
		[]clarify.Option{{Value: "vim"}, {Value: "nvim"}},
		func(clarify.Option) bool { return true })
	pending.Put("req-1", menu)

	h := NewClarifyHandler(engine, pending)

	router := gin.New()
	router.POST("/v1/clarify/:request_id", h.Resolve)

	req := httptest.NewRequest(http.MethodPost, "/v1/clarify/req-1", strings.NewReader(`{"response": "2"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"value":"nvim"`) {
		t.Fatalf("expected resolved value nvim, got: %s", w.Body.String())
	}
}

func TestClarifyHandler_UnknownRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	factsStore, _ := facts.New(t.TempDir())
	engine := clarify.New(probe.NewExecutor(probe.NewCatalog(), probe.NewCache(), probe.ExecRunner{}), factsStore)
	h := NewClarifyHandler(engine, NewPendingClarifications())

	router := gin.New()
	router.POST("/v1/clarify/:request_id", h.Resolve)

	req := httptest.NewRequest(http.MethodPost, "/v1/clarify/missing", strings.NewReader(`{"response": "1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
