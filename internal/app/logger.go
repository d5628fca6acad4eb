package app

import (
	"strings"

	"github.com/charlesng35/memberhub/pkg/logger"
)

// ConfigureLogging initialises the global logger from server settings, defaulting to info.
// A rotating file sink is added when server.log_file.path is set.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}

	var opts []logger.Option
	if path := strings.TrimSpace(cfg.LogFile.Path); path != "" {
		opts = append(opts, logger.WithRotatingFile(path, cfg.LogFile.MaxAge, cfg.LogFile.RotationTime))
	}
	return logger.Init(level, opts...)
}
