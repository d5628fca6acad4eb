package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/memberhub/internal/app"
	"github.com/charlesng35/memberhub/internal/events"
	"github.com/charlesng35/memberhub/internal/models"
)

func newBootstrapConfig(t *testing.T) *app.Config {
	t.Helper()

	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "memberhub.sqlite")
	cfg.Auth.JWT.Secret = "bootstrap-test-secret-with-32-bytes!!"
	cfg.Auth.BootstrapAdmin.Email = "root@example.com"
	cfg.Auth.BootstrapAdmin.Password = "Bootstrap@2024"
	cfg.Cache.Redis.Enabled = false
	cfg.Events.AMQP.Enabled = false
	cfg.Email.SMTP.Enabled = false
	cfg.Monitoring.Prometheus.Enabled = false
	return cfg
}

func TestBootstrapRuntime(t *testing.T) {
	cfg := newBootstrapConfig(t)

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

	require.NotNil(t, stack.Router)
	require.NotNil(t, stack.RateStore)
	require.NotNil(t, stack.Cleaner)
	require.NotNil(t, stack.Hub)
	require.Nil(t, stack.Redis)
	require.Nil(t, stack.Mailer)
	require.IsType(t, events.NoopPublisher{}, stack.Publisher)

	var admin models.User
	require.NoError(t, stack.DB.Where("email = ?", "root@example.com").First(&admin).Error)
	require.True(t, admin.IsAdmin)
	require.True(t, admin.IsMember)
	require.Equal(t, "Administrator", admin.FullName)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	stack.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBootstrapRuntimeKeepsExistingAdmin(t *testing.T) {
	cfg := newBootstrapConfig(t)
	cfg.Maintenance.Enabled = false

	first, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, first.Cleaner)
	require.NoError(t, first.Shutdown(context.Background()))

	cfg.Auth.BootstrapAdmin.Password = "Different@2025"
	second, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Shutdown(context.Background()) })

	var count int64
	require.NoError(t, second.DB.Model(&models.User{}).Where("email = ?", "root@example.com").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBootstrapRuntimeWithoutBootstrapAdmin(t *testing.T) {
	cfg := newBootstrapConfig(t)
	cfg.Auth.BootstrapAdmin.Email = ""

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

	var count int64
	require.NoError(t, stack.DB.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestBootstrapRuntimeUnsupportedDriver(t *testing.T) {
	cfg := newBootstrapConfig(t)
	cfg.Database.Driver = "oracle"

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Nil(t, stack)
	require.Contains(t, err.Error(), "open database")
}

func TestShutdownNilStack(t *testing.T) {
	var stack *runtimeStack
	require.NoError(t, stack.Shutdown(context.Background()))
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(""))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	const key = "MEMBERHUB_BOOTSTRAP_TEST_VALUE"
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "from-dotenv", os.Getenv(key))
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestLoadApplicationConfigFromFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o600))

	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
}
