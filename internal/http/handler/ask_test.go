package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"anna.local/annad/common/llm"
	"anna.local/annad/internal/budget"
	"anna.local/annad/internal/orchestrator"
	"anna.local/annad/internal/probe"
	"anna.local/annad/internal/skills"
)

type scriptedClient struct {
	responses []string
	calls     int
}

func (c *scriptedClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	raw := c.responses[c.calls]
	c.calls++
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return nil, err
	}
	return &llm.Response{}, nil
}

func (c *scriptedClient) Model() string { return "scripted" }

type fakeRunner struct{}

func (fakeRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	return []byte("ok"), nil
}

func newTestOrchestrator(junior, senior llm.Client) *orchestrator.Orchestrator {
	cat := probe.NewCatalog()
	cache := probe.NewCache()
	exec := probe.NewExecutor(cat, cache, fakeRunner{})
	return orchestrator.New(exec, cat, junior, senior, 0)
}

func TestAskHandler_LearnedSkillShortCircuitsOrchestrator(t *testing.T) {
	gin.SetMode(gin.TestMode)

	skillsStore, err := skills.New(t.TempDir())
	if err != nil {
		t.Fatalf("skills.New: %v", err)
	}
	question := "install vim for me"
	if _, err := skillsStore.LearnFromSuccess("install_package", "install vim via pacman", []string{"pacman", "-S", "vim"}, question, 100); err != nil {
		t.Fatalf("LearnFromSuccess: %v", err)
	}

	junior := &scriptedClient{}
	senior := &scriptedClient{}
	orch := newTestOrchestrator(junior, senior)

	h := NewAskHandler(orch, skillsStore, budget.DefaultConfig(), NewPendingClarifications())

	router := gin.New()
	router.POST("/v1/ask", h.Ask)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question": "`+question+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if junior.calls != 0 || senior.calls != 0 {
		t.Fatalf("expected orchestrator not consulted, junior=%d senior=%d", junior.calls, senior.calls)
	}
	if !strings.Contains(w.Body.String(), "pacman -S vim") {
		t.Fatalf("expected proposed change to carry the learned command, got: %s", w.Body.String())
	}
}

func TestAskHandler_DirectAnswerGoesThroughOrchestrator(t *testing.T) {
	gin.SetMode(gin.TestMode)

	skillsStore, err := skills.New(t.TempDir())
	if err != nil {
		t.Fatalf("skills.New: %v", err)
	}

	junior := &scriptedClient{responses: []string{
		`{"type":"propose_answer","text":"You have 16GB of RAM. [E1]","citations":["E1"],"scores":{"evidence":0.9,"reasoning":0.9,"coverage":1.0,"overall":90},"ready_for_user":true}`,
	}}
	senior := &scriptedClient{}
	orch := newTestOrchestrator(junior, senior)

	h := NewAskHandler(orch, skillsStore, budget.DefaultConfig(), NewPendingClarifications())

	router := gin.New()
	router.POST("/v1/ask", h.Ask)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question": "how much memory do I have"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "16GB of RAM") {
		t.Fatalf("expected final answer text in response, got: %s", w.Body.String())
	}
	if senior.calls != 0 {
		t.Fatalf("expected senior not consulted for a high-scoring answer, got %d calls", senior.calls)
	}
}

func TestAskHandler_MissingQuestionIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	skillsStore, _ := skills.New(t.TempDir())
	orch := newTestOrchestrator(&scriptedClient{}, &scriptedClient{})
	h := NewAskHandler(orch, skillsStore, budget.DefaultConfig(), NewPendingClarifications())

	router := gin.New()
	router.POST("/v1/ask", h.Ask)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
