// Package cli is the command-line driving adapter for wikirec.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// DefaultSessionID names the history session used from the command line.
const DefaultSessionID = "cli"

// Services holds the runtime services built by the composition root.
type Services struct {
	Recommend driving.RecommendationService
	Explorer  driving.ExplorerService
	History   driving.HistoryService
	Catalog   driving.CatalogService

	// Watch, when set, blocks reloading the catalog on dataset changes.
	// Long-running commands start it in the background.
	Watch func(ctx context.Context) error

	// Close releases stores and clients.
	Close func() error
}

// Bootstrap builds the runtime services. It runs only for commands that
// need the catalog, so settings and version stay fast.
type Bootstrap func(ctx context.Context) (*Services, error)

// HistoryBootstrap opens only the history store and returns the service
// with its close function. History commands use it so they work without
// a dataset or embedder.
type HistoryBootstrap func(ctx context.Context) (driving.HistoryService, func() error, error)

var (
	settingsService  driving.SettingsService
	bootstrap        Bootstrap
	historyBootstrap HistoryBootstrap

	recommendationService driving.RecommendationService
	explorerService       driving.ExplorerService
	historyService        driving.HistoryService
	catalogService        driving.CatalogService
	watchFunc             func(ctx context.Context) error
	closers               []func() error
)

var (
	verbose   bool
	logFormat string
	sessionID string
)

var rootCmd = &cobra.Command{
	Use:   "wikirec",
	Short: "Related-article recommendations for encyclopedia readers",
	Long: `wikirec suggests related articles for whatever you are reading.

Look up an article, read its summary and pick one of the recommended
articles to continue. Visits are kept in a short per-session history.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetFormat(logger.Format(logFormat))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logger.FormatConsole), "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", DefaultSessionID, "history session id")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetSettingsService sets the settings service used by settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets the function that builds runtime services on demand.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetHistoryBootstrap sets the function that opens the history store on
// demand for history-only commands.
func SetHistoryBootstrap(b HistoryBootstrap) {
	historyBootstrap = b
}

// SetServices installs already built runtime services, replacing any
// installed before.
func SetServices(s *Services) {
	closers = nil
	installServices(s)
}

func installServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	recommendationService = s.Recommend
	explorerService = s.Explorer
	historyService = s.History
	catalogService = s.Catalog
	watchFunc = s.Watch
	addCloser(s.Close)
}

func addCloser(fn func() error) {
	if fn != nil {
		closers = append(closers, fn)
	}
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as mcp serve and tui.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// requireServices builds the runtime services on first use.
func requireServices(ctx context.Context) error {
	if recommendationService != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}
	s, err := bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("start wikirec: %w", err)
	}
	installServices(s)
	return nil
}

// requireHistory opens the history service on first use. Without a history
// bootstrap it falls back to the full one.
func requireHistory(ctx context.Context) error {
	if historyService != nil {
		return nil
	}
	if historyBootstrap == nil {
		return requireServices(ctx)
	}
	h, closeHistory, err := historyBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	historyService = h
	addCloser(closeHistory)
	return nil
}

// closeServices closes everything opened so far, newest first.
func closeServices() {
	fns := closers
	closers = nil
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			logger.Warn("close services: %v", err)
		}
	}
}

// startWatch runs the dataset watcher until ctx ends, if one is configured.
func startWatch(ctx context.Context) {
	if watchFunc == nil {
		return
	}
	go func() {
		if err := watchFunc(ctx); err != nil {
			logger.Warn("dataset watcher stopped: %v", err)
		}
	}()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
