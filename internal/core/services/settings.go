package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDatasetMetadata      = "dataset.metadata"
	keyDatasetVectors       = "dataset.vectors"
	keyEmbedProvider        = "embedding.provider"
	keyEmbedModel           = "embedding.model"
	keyEmbedPath            = "embedding.path"
	keyEmbedBaseURL         = "embedding.base_url"
	keyEmbedAPIKey          = "embedding.api_key"
	keyEmbedDimensions      = "embedding.dimensions"
	keyIndexBackend         = "index.backend"
	keyIndexDistance        = "index.distance"
	keyIndexTables          = "index.tables"
	keyIndexProbes          = "index.probes"
	keyIndexRotations       = "index.rotations"
	keyIndexHashBits        = "index.hash_bits"
	keyIndexSetupThreads    = "index.setup_threads"
	keyIndexSeed            = "index.seed"
	keyHistoryCapacity      = "history.capacity"
	keyHistoryEscalateAfter = "history.escalate_after"
	keyStorageBackend       = "storage.backend"
	keyStoragePath          = "storage.path"
	keyStorageRedisAddr     = "storage.redis_addr"
	keyStorageRedisPassword = "storage.redis_password"
	keyWikiLanguage         = "wiki.language"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
)

// settingKinds lists every recognised key and how its value is parsed.
var settingKinds = map[string]settingKind{
	keyDatasetMetadata:      kindString,
	keyDatasetVectors:       kindString,
	keyEmbedProvider:        kindString,
	keyEmbedModel:           kindString,
	keyEmbedPath:            kindString,
	keyEmbedBaseURL:         kindString,
	keyEmbedAPIKey:          kindString,
	keyEmbedDimensions:      kindInt,
	keyIndexBackend:         kindString,
	keyIndexDistance:        kindString,
	keyIndexTables:          kindInt,
	keyIndexProbes:          kindInt,
	keyIndexRotations:       kindInt,
	keyIndexHashBits:        kindInt,
	keyIndexSetupThreads:    kindInt,
	keyIndexSeed:            kindInt,
	keyHistoryCapacity:      kindInt,
	keyHistoryEscalateAfter: kindInt,
	keyStorageBackend:       kindString,
	keyStoragePath:          kindString,
	keyStorageRedisAddr:     kindString,
	keyStorageRedisPassword: kindString,
	keyWikiLanguage:         kindString,
}

// SettingKeys returns every recognised configuration key, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	seed := uint64(s.configStore.GetInt(keyIndexSeed)) //nolint:gosec // G115: seeds round-trip as raw bits.
	settings := &domain.AppSettings{
		Dataset: domain.DatasetSettings{
			MetadataPath: s.configStore.GetString(keyDatasetMetadata),
			VectorsPath:  s.configStore.GetString(keyDatasetVectors),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getEmbeddingProvider(defaults.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			Path:       s.configStore.GetString(keyEmbedPath),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		Index: domain.IndexSettings{
			Backend: s.getIndexBackend(defaults.Index.Backend),
			Config: domain.IndexConfig{
				Distance:        s.getDistance(defaults.Index.Config.Distance),
				NumTables:       s.getInt(keyIndexTables, defaults.Index.Config.NumTables),
				NumProbes:       s.configStore.GetInt(keyIndexProbes),
				NumRotations:    s.getInt(keyIndexRotations, defaults.Index.Config.NumRotations),
				HashBits:        s.getInt(keyIndexHashBits, defaults.Index.Config.HashBits),
				NumSetupThreads: s.configStore.GetInt(keyIndexSetupThreads),
				Seed:            seed,
			}.WithDefaults(),
		},
		History: domain.HistorySettings{
			Capacity:      s.getInt(keyHistoryCapacity, defaults.History.Capacity),
			EscalateAfter: s.getInt(keyHistoryEscalateAfter, defaults.History.EscalateAfter),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getStorageBackend(defaults.Storage.Backend),
			Path:          s.configStore.GetString(keyStoragePath),
			RedisAddr:     s.configStore.GetString(keyStorageRedisAddr),
			RedisPassword: s.configStore.GetString(keyStorageRedisPassword),
		},
		Wiki: domain.WikiSettings{
			Language: s.getString(keyWikiLanguage, defaults.Wiki.Language),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}

	seed := int64(settings.Index.Config.Seed) //nolint:gosec // G115: seeds round-trip as raw bits.
	if settings.Index.Config.Seed == domain.DefaultIndexSeed {
		seed = 0
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDatasetMetadata, settings.Dataset.MetadataPath},
		{keyDatasetVectors, settings.Dataset.VectorsPath},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedPath, settings.Embedding.Path},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyIndexBackend, string(settings.Index.Backend)},
		{keyIndexDistance, settings.Index.Config.Distance.String()},
		{keyIndexTables, settings.Index.Config.NumTables},
		{keyIndexProbes, settings.Index.Config.NumProbes},
		{keyIndexRotations, settings.Index.Config.NumRotations},
		{keyIndexHashBits, settings.Index.Config.HashBits},
		{keyIndexSetupThreads, settings.Index.Config.NumSetupThreads},
		{keyIndexSeed, seed},
		{keyHistoryCapacity, settings.History.Capacity},
		{keyHistoryEscalateAfter, settings.History.EscalateAfter},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStoragePath, settings.Storage.Path},
		{keyStorageRedisAddr, settings.Storage.RedisAddr},
		{keyWikiLanguage, settings.Wiki.Language},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets usually come from the environment; only persist them if set.
	secrets := []struct{ key, value string }{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyStorageRedisPassword, settings.Storage.RedisPassword},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// Values returns the effective value of every recognised key.
func (s *SettingsService) Values() (map[string]string, error) {
	st, err := s.Get()
	if err != nil {
		return nil, err
	}
	cfg := st.Index.Config
	return map[string]string{
		keyDatasetMetadata:      st.Dataset.MetadataPath,
		keyDatasetVectors:       st.Dataset.VectorsPath,
		keyEmbedProvider:        st.Embedding.Provider.String(),
		keyEmbedModel:           st.Embedding.Model,
		keyEmbedPath:            st.Embedding.Path,
		keyEmbedBaseURL:         st.Embedding.BaseURL,
		keyEmbedAPIKey:          st.Embedding.APIKey,
		keyEmbedDimensions:      strconv.Itoa(st.Embedding.Dimensions),
		keyIndexBackend:         string(st.Index.Backend),
		keyIndexDistance:        cfg.Distance.String(),
		keyIndexTables:          strconv.Itoa(cfg.NumTables),
		keyIndexProbes:          strconv.Itoa(cfg.NumProbes),
		keyIndexRotations:       strconv.Itoa(cfg.NumRotations),
		keyIndexHashBits:        strconv.Itoa(cfg.HashBits),
		keyIndexSetupThreads:    strconv.Itoa(cfg.NumSetupThreads),
		keyIndexSeed:            strconv.FormatUint(cfg.Seed, 10),
		keyHistoryCapacity:      strconv.Itoa(st.History.Capacity),
		keyHistoryEscalateAfter: strconv.Itoa(st.History.EscalateAfter),
		keyStorageBackend:       string(st.Storage.Backend),
		keyStoragePath:          st.Storage.Path,
		keyStorageRedisAddr:     st.Storage.RedisAddr,
		keyStorageRedisPassword: st.Storage.RedisPassword,
		keyWikiLanguage:         st.Wiki.Language,
	}, nil
}

// SetValue parses raw according to the key's type and stores it.
func (s *SettingsService) SetValue(key, raw string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var value any = raw
	if kind == kindInt {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, raw)
		}
		value = n
	}

	if err := s.validateValue(key, raw); err != nil {
		return err
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) validateValue(key, raw string) error {
	switch key {
	case keyEmbedProvider:
		if !domain.EmbeddingProvider(raw).IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, raw)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(raw).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, raw)
		}
	case keyIndexDistance:
		if !domain.DistanceFunction(raw).IsValid() {
			return fmt.Errorf("%w: unknown distance %q", domain.ErrInvalidInput, raw)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(raw).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, raw)
		}
	}
	return nil
}

// Validate checks that the settings are complete enough to serve requests.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Dataset.IsConfigured() {
		return fmt.Errorf("dataset not configured: set %s and %s", keyDatasetMetadata, keyDatasetVectors)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not fully configured", settings.Embedding.Provider)
	}
	if settings.Storage.Backend == domain.StorageBackendRedis && settings.Storage.RedisAddr == "" {
		return fmt.Errorf("storage backend redis requires %s", keyStorageRedisAddr)
	}
	if settings.History.Capacity <= 0 {
		return fmt.Errorf("%s must be positive", keyHistoryCapacity)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getEmbeddingProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	p := domain.EmbeddingProvider(s.configStore.GetString(keyEmbedProvider))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

func (s *SettingsService) getIndexBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	b := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}

func (s *SettingsService) getDistance(defaultVal domain.DistanceFunction) domain.DistanceFunction {
	d := domain.DistanceFunction(s.configStore.GetString(keyIndexDistance))
	if !d.IsValid() {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStorageBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	b := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}
