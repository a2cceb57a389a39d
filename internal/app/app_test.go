package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/MagicStudio/internal/config"
	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/storage"
)

func demoConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:           "0",
		DataDir:        t.TempDir(),
		Text:           config.TextConfig{Provider: config.ProviderMock},
		Image:          config.ImageConfig{Provider: config.ProviderMock, Extractor: "inline", AspectRatio: "1:1"},
		RetryBackoff:   time.Millisecond,
		RequestTimeout: 5 * time.Second,
		ParentPassword: config.DefaultParentPassword,
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		AuditBackend:   "json",
		AuditFile:      "historial.json",
	}
}

type mockServer struct {
	shutdownCalled atomic.Bool
}

func (m *mockServer) ListenAndServe() error { return nil }

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdownCalled.Store(true)
	return nil
}

func TestNew_RegistersComponents(t *testing.T) {
	a, err := New(demoConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{
		ServiceAudit, ServiceCreation, ServiceHistory, ServiceHub,
		ServiceIllustrator, ServiceModerator, ServiceTokens,
	}, a.GetDIContainer().GetNames())
	assert.False(t, a.IsDebugMode())
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := demoConfig(t)
	cfg.Text.Provider = "carrier-pigeon"

	_, err := New(cfg)
	assert.ErrorContains(t, err, "text provider")
}

func TestApp_CreateAndReadHistory(t *testing.T) {
	cfg := demoConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Creation().Create(context.Background(), "a dragon made of clouds")
	require.NoError(t, err)
	assert.Equal(t, models.StateRendered, result.State)
	require.NotNil(t, result.Illustration)

	panel := a.History().Unlock(context.Background(), config.DefaultParentPassword)
	require.True(t, panel.Unlocked)
	require.Len(t, panel.Records, 1)
	assert.Equal(t, "a dragon made of clouds", panel.Records[0].Prompt)

	assert.FileExists(t, filepath.Join(cfg.DataDir, "historial.json"))
}

func TestApp_SQLiteBackend(t *testing.T) {
	cfg := demoConfig(t)
	cfg.AuditBackend = "sqlite"

	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Creation().Create(context.Background(), "a kite")
	require.NoError(t, err)
	a.Close()

	assert.FileExists(t, filepath.Join(cfg.DataDir, "historial.db"))

	reopened, err := storage.NewSQLiteAuditLog(filepath.Join(cfg.DataDir, "historial.db"))
	require.NoError(t, err)
	defer reopened.Close()
	records, err := reopened.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeApproved, records[0].Outcome)
}

func TestApp_Router(t *testing.T) {
	a, err := New(demoConfig(t))
	require.NoError(t, err)
	defer a.Close()

	router, err := a.Router()
	require.NoError(t, err)

	again, err := a.Router()
	require.NoError(t, err)
	assert.Same(t, router, again)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRun_ShutsDownOnSignal(t *testing.T) {
	a, err := New(demoConfig(t))
	require.NoError(t, err)
	defer a.Close()

	srv := &mockServer{}
	a.server = srv

	go func() {
		time.Sleep(50 * time.Millisecond)
		a.stopChan <- os.Signal(syscall.SIGTERM)
	}()

	require.NoError(t, a.Run())
	assert.True(t, srv.shutdownCalled.Load())
}
