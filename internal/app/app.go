// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/MagicStudio/internal/api"
	"github.com/Corphon/MagicStudio/internal/auth"
	"github.com/Corphon/MagicStudio/internal/config"
	"github.com/Corphon/MagicStudio/internal/di"
	"github.com/Corphon/MagicStudio/internal/llm"
	"github.com/Corphon/MagicStudio/internal/services"
	"github.com/Corphon/MagicStudio/internal/storage"
	"github.com/Corphon/MagicStudio/internal/utils"

	// remote capability providers
	_ "github.com/Corphon/MagicStudio/internal/llm/providers/anthropic"
	_ "github.com/Corphon/MagicStudio/internal/llm/providers/google"
	_ "github.com/Corphon/MagicStudio/internal/llm/providers/mock"
	_ "github.com/Corphon/MagicStudio/internal/llm/providers/openai"
)

// Component names in the container
const (
	ServiceAudit       = "audit"
	ServiceModerator   = "moderator"
	ServiceIllustrator = "illustrator"
	ServiceHub         = "hub"
	ServiceCreation    = "creation"
	ServiceHistory     = "history"
	ServiceTokens      = "tokens"
)

const shutdownTimeout = 30 * time.Second

// httpServer is the part of *http.Server the app drives
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App owns the component graph of one studio process
type App struct {
	config    *config.Config
	container *di.Container
	router    *gin.Engine
	server    httpServer
	stopChan  chan os.Signal
	logger    *utils.Logger
}

// New builds every component from cfg. The caller must Close the app.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config:    cfg,
		container: di.NewContainer(),
		stopChan:  make(chan os.Signal, 1),
		logger:    utils.GetLogger(),
	}
	if err := a.initServices(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initServices() error {
	cfg := a.config

	audit, err := openAuditLog(cfg)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	a.container.Register(ServiceAudit, audit)

	textProvider, err := llm.GetProvider(cfg.Text.Provider, cfg.TextProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize text provider: %w", err)
	}
	moderator := services.NewModerator(textProvider, cfg.Text.Model, cfg.RequestTimeout)
	a.container.Register(ServiceModerator, moderator)

	imageProvider, err := llm.GetImageProvider(cfg.Image.Provider, cfg.ImageProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize image provider: %w", err)
	}
	extractor, err := llm.GetExtractor(cfg.Image.Extractor)
	if err != nil {
		return err
	}
	illustrator := services.NewIllustrator(imageProvider, extractor, services.IllustratorOptions{
		Model:       cfg.Image.Model,
		AspectRatio: cfg.Image.AspectRatio,
		Backoff:     cfg.RetryBackoff,
		Timeout:     cfg.RequestTimeout,
	})
	a.container.Register(ServiceIllustrator, illustrator)

	hub := api.NewAttemptHub()
	a.container.Register(ServiceHub, hub)

	a.container.Register(ServiceCreation, services.NewCreationService(moderator, illustrator, audit, hub))

	gate, err := auth.NewPasswordGate(cfg.ParentPassword)
	if err != nil {
		return fmt.Errorf("failed to prepare parental password: %w", err)
	}
	a.container.Register(ServiceHistory, services.NewHistoryService(audit, gate))

	tokens, err := api.NewTokenConfig(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to prepare session signing: %w", err)
	}
	a.container.Register(ServiceTokens, tokens)

	a.logger.Info("services initialized", map[string]interface{}{
		"text_provider":  textProvider.GetName(),
		"image_provider": imageProvider.GetName(),
		"extractor":      extractor.Name(),
		"audit_backend":  cfg.AuditBackend,
		"components":     a.container.GetNames(),
	})
	return nil
}

// openAuditLog picks the JSON file or SQLite backend
func openAuditLog(cfg *config.Config) (storage.AuditLog, error) {
	path := cfg.AuditPath()
	switch cfg.AuditBackend {
	case "sqlite":
		if ext := filepath.Ext(path); ext != ".db" {
			path = strings.TrimSuffix(path, ext) + ".db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		return storage.NewSQLiteAuditLog(path)
	default:
		files, err := storage.NewFileStorage(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		return storage.NewJSONFileAuditLog(files, filepath.Base(path), utils.GetLogger()), nil
	}
}

// Creation returns the attempt pipeline
func (a *App) Creation() *services.CreationService {
	return di.MustResolve[*services.CreationService](a.container, ServiceCreation)
}

// History returns the parental history service
func (a *App) History() *services.HistoryService {
	return di.MustResolve[*services.HistoryService](a.container, ServiceHistory)
}

func (a *App) GetConfig() *config.Config {
	return a.config
}

func (a *App) GetDIContainer() *di.Container {
	return a.container
}

func (a *App) IsDebugMode() bool {
	return a.config != nil && a.config.DebugMode
}

// Router builds the HTTP router on first use
func (a *App) Router() (*gin.Engine, error) {
	if a.router != nil {
		return a.router, nil
	}

	handler := api.NewHandler(
		a.Creation(),
		a.History(),
		di.MustResolve[*auth.TokenConfig](a.container, ServiceTokens),
		di.MustResolve[*api.AttemptHub](a.container, ServiceHub),
	)
	router, err := api.SetupRouter(handler, api.RouterOptions{
		DebugMode:   a.config.DebugMode,
		CreateLimit: a.config.CreateLimit,
		UnlockLimit: a.config.UnlockLimit,
	})
	if err != nil {
		return nil, err
	}
	a.router = router
	return router, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully
func (a *App) Run() error {
	if a.server == nil {
		router, err := a.Router()
		if err != nil {
			return fmt.Errorf("failed to set up router: %w", err)
		}
		a.server = &http.Server{
			Addr:              ":" + a.config.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", map[string]interface{}{"port": a.config.Port})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-a.stopChan:
		a.logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shut down: %w", err)
	}
	a.logger.Info("server stopped", nil)
	return nil
}

// Close releases the hub and the audit store
func (a *App) Close() {
	if hub, err := di.Resolve[*api.AttemptHub](a.container, ServiceHub); err == nil {
		hub.Close()
	}
	if audit, err := di.Resolve[storage.AuditLog](a.container, ServiceAudit); err == nil {
		if err := audit.Close(); err != nil {
			a.logger.Warn("failed to close audit log", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = a.logger.Sync()
}
