package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"anna.local/annad/common/id"
	"anna.local/annad/common/llm"
	"anna.local/annad/common/logger"
	"anna.local/annad/common/otel"
	"anna.local/annad/core/config"
	"anna.local/annad/internal/budget"
	"anna.local/annad/internal/clarify"
	"anna.local/annad/internal/episode"
	"anna.local/annad/internal/facts"
	"anna.local/annad/internal/http/handler"
	"anna.local/annad/internal/http/middleware"
	httprouter "anna.local/annad/internal/http/router"
	"anna.local/annad/internal/orchestrator"
	"anna.local/annad/internal/persona"
	"anna.local/annad/internal/probe"
	"anna.local/annad/internal/skills"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// OTel must init before logger (logger wraps spans into every record)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.Info("otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.Info("otel disabled (no endpoint configured)")
	}

	slog.Info("annad starting", "env", cfg.Env)

	if err := id.Init(1); err != nil {
		slog.Error("failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	juniorClient, err := llm.NewClient(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		slog.Error("failed to build junior llm client", "error", err)
		os.Exit(1)
	}

	seniorCfg := cfg.SeniorLLM()
	seniorClient, err := llm.NewClient(llm.Config{
		Provider: seniorCfg.Provider,
		APIKey:   seniorCfg.APIKey,
		BaseURL:  seniorCfg.BaseURL,
		Model:    seniorCfg.Model,
	})
	if err != nil {
		slog.Error("failed to build senior llm client", "error", err)
		os.Exit(1)
	}

	factsStore, err := facts.New(filepath.Join(cfg.StorageRoot, "facts"))
	if err != nil {
		slog.Error("failed to open facts store", "error", err)
		os.Exit(1)
	}

	skillsStore, err := skills.New(filepath.Join(cfg.StorageRoot, "skills"))
	if err != nil {
		slog.Error("failed to open skills store", "error", err)
		os.Exit(1)
	}

	backupStore := episode.NewBackupStore(filepath.Join(cfg.StorageRoot, "backups"))
	episodeStore, err := episode.New(filepath.Join(cfg.StorageRoot, "episodes"))
	if err != nil {
		slog.Error("failed to open episode store", "error", err)
		os.Exit(1)
	}

	personaDir := filepath.Join(cfg.StorageRoot, "persona")
	personaStore, err := persona.New(personaDir)
	if err != nil {
		slog.Error("failed to open persona store", "error", err)
		os.Exit(1)
	}

	skillsDir := filepath.Join(cfg.StorageRoot, "skills")
	personaOverridePath := filepath.Join(personaDir, "override")
	watcher, err := config.NewWatcher(func(path string) {
		switch {
		case path == personaOverridePath:
			slog.Info("persona override changed on disk, reloading", "path", path)
			if err := personaStore.Reload(); err != nil {
				slog.Error("failed to reload persona store", "error", err)
			}
		default:
			slog.Info("skills directory changed on disk, reloading", "path", path)
			if err := skillsStore.Reload(); err != nil {
				slog.Error("failed to reload skills store", "error", err)
			}
		}
	}, skillsDir, personaOverridePath)
	if err != nil {
		slog.Error("failed to start config watcher", "error", err)
		os.Exit(1)
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	catalog := probe.NewCatalog()
	cache := probe.NewCache()
	executor := probe.NewExecutor(catalog, cache, probe.ExecRunner{})

	clarifyEngine := clarify.New(executor, factsStore)
	orch := orchestrator.New(executor, catalog, juniorClient, seniorClient, cfg.Budget.MaxJuniorIterations)

	pending := handler.NewPendingClarifications()
	handlers := httprouter.Handlers{
		Ask:      handler.NewAskHandler(orch, skillsStore, budget.DefaultConfig(), pending),
		Clarify:  handler.NewClarifyHandler(clarifyEngine, pending),
		Rollback: handler.NewRollbackHandler(episodeStore, backupStore),
		Persona:  handler.NewPersonaHandler(personaStore),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, handlers)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown error", "error", err)
		}
	}

	slog.Info("shutdown complete")
}

func setupRouter(cfg config.Config, handlers httprouter.Handlers) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates the span, Recovery catches panics
	// inside it, RequestID stamps the correlation id before Logger
	// reads it back off the context.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, handlers)

	return router
}
