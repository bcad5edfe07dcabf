package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// secretSettings are masked when listed.
//
//nolint:gosec // G101: config key names, not credentials.
var secretSettings = map[string]bool{
	"embedding.api_key":      true,
	"storage.redis_password": true,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the dataset, embedding provider, index and history
storage.

Use subcommands to change single keys or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting key with its effective value",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting. Run 'wikirec settings list' to see the keys.

Examples:
  wikirec settings set dataset.metadata ./data/articles.csv
  wikirec settings set index.tables 16
  wikirec settings set storage.backend badger`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Dataset]")
	cmd.Printf("  Metadata: %s\n", orNotSet(settings.Dataset.MetadataPath))
	cmd.Printf("  Vectors: %s\n", orNotSet(settings.Dataset.VectorsPath))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Word vectors: %s\n", orNotSet(settings.Embedding.Path))
	} else {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
		if settings.Embedding.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
		}
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cfg := settings.Index.Config
	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	cmd.Printf("  Distance: %s\n", cfg.Distance)
	cmd.Printf("  Tables: %d, probes: %d, hash bits: %d\n", cfg.NumTables, cfg.NumProbes, cfg.HashBits)
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Capacity: %d\n", settings.History.Capacity)
	cmd.Printf("  Storage: %s\n", settings.Storage.Backend)
	if settings.Storage.Backend == domain.StorageBackendRedis {
		cmd.Printf("  Redis: %s\n", orNotSet(settings.Storage.RedisAddr))
		if settings.Storage.RedisPassword != "" {
			cmd.Printf("  Redis password: %s\n", maskAPIKey(settings.Storage.RedisPassword))
		}
	} else if settings.Storage.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Storage.Path)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'wikirec settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s = %s\n", k, displayValue(k, values[k]))
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	v, ok := values[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, args[0])
	}
	cmd.Println(displayValue(args[0], v))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetValue(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], displayValue(args[0], args[1]))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("wikirec Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: dataset
	cmd.Println("Step 1: Catalog Dataset")
	cmd.Println("-----------------------")
	settings.Dataset.MetadataPath = prompt(cmd, reader, "Metadata CSV", settings.Dataset.MetadataPath)
	settings.Dataset.VectorsPath = prompt(cmd, reader, "Vectors .npy", settings.Dataset.VectorsPath)
	cmd.Println()

	// Step 2: embedding
	cmd.Println("Step 2: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureEmbedding(cmd, reader, settings); err != nil {
		return err
	}
	cmd.Println()

	// Step 3: history storage
	cmd.Println("Step 3: History Storage")
	cmd.Println("-----------------------")
	backends := domain.AllStorageBackends()
	current := 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
		if b == settings.Storage.Backend {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Storage.Backend = backends[parseChoice(readLine(reader), len(backends), current)-1]
	if settings.Storage.Backend == domain.StorageBackendRedis {
		settings.Storage.RedisAddr = prompt(cmd, reader, "Redis address", settings.Storage.RedisAddr)
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func configureEmbedding(cmd *cobra.Command, reader *bufio.Reader, settings *domain.AppSettings) error {
	providers := domain.AllEmbeddingProviders()
	current := 1
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
		if p == settings.Embedding.Provider {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	selected := providers[parseChoice(readLine(reader), len(providers), current)-1]

	if selected != settings.Embedding.Provider {
		settings.Embedding.Model = ""
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.Provider = selected

	if selected.IsLocal() {
		settings.Embedding.Path = prompt(cmd, reader, "Word vectors file", settings.Embedding.Path)
		return nil
	}

	model := settings.Embedding.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[selected]
	}
	settings.Embedding.Model = prompt(cmd, reader, "Model name", model)

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readPassword(reader)
		cmd.Println()
		if apiKey == "" && settings.Embedding.APIKey == "" {
			return errors.New("API key is required for this provider")
		}
		if apiKey != "" {
			settings.Embedding.APIKey = apiKey
		}
	}
	return nil
}

// Helper functions.

func prompt(cmd *cobra.Command, reader *bufio.Reader, label, current string) string {
	if current != "" {
		cmd.Printf("%s [%s]: ", label, current)
	} else {
		cmd.Printf("%s: ", label)
	}
	if v := readLine(reader); v != "" {
		return v
	}
	return current
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to a
// plain line otherwise.
func readPassword(reader io.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	if br, ok := reader.(*bufio.Reader); ok {
		return readLine(br)
	}
	return readLine(bufio.NewReader(reader))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func displayValue(key, value string) string {
	if secretSettings[key] && value != "" {
		return maskAPIKey(value)
	}
	return value
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
