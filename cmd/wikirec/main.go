// Command wikirec recommends related encyclopedia articles.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/config/file"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikirec/internal/core/services"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configDirEnv overrides the configuration directory (default ~/.wikirec).
const configDirEnv = "WIKIREC_HOME"

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("read .env: %v", err)
	}

	configStore, err := file.NewConfigStore(os.Getenv(configDirEnv))
	if err != nil {
		logger.Error(err, "open config")
		return 1
	}
	settings := services.NewSettingsService(configStore)

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetBootstrap(newBootstrap(settings))
	cli.SetHistoryBootstrap(newHistoryBootstrap(settings))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
