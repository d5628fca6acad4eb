package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/memberhub/pkg/logger"
)

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, ConfigureLogging(ServerConfig{LogLevel: "debug"}))
	require.NoError(t, ConfigureLogging(ServerConfig{}))
}

func TestConfigureLoggingWithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := ServerConfig{
		LogLevel: "info",
		LogFile: LogFileConfig{
			Path:         filepath.Join(dir, "memberhub.%Y%m%d.log"),
			MaxAge:       24 * time.Hour,
			RotationTime: time.Hour,
		},
	}
	require.NoError(t, ConfigureLogging(cfg))
	t.Cleanup(func() { _ = logger.Init("info") })

	logger.Info("file sink ready")
	_ = logger.Sync()

	matches, err := filepath.Glob(filepath.Join(dir, "memberhub.*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)
}
