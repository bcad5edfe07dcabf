package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the service that maps titles to vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderFastText reads a local word-vector file.
	EmbeddingProviderFastText EmbeddingProvider = "fasttext"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderFastText, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsLocal returns true if this provider runs without a network service.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderFastText
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderFastText:
		return "fastText word vectors (local file)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the durable key-value store for history.
type StorageBackend string

// Available storage backends.
const (
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendBadger StorageBackend = "badger"
	StorageBackendRedis  StorageBackend = "redis"
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendSQLite, StorageBackendBadger, StorageBackendRedis, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// IsDurable returns true if history survives a restart.
func (b StorageBackend) IsDurable() bool {
	return b != StorageBackendMemory
}

// DatasetSettings locates the catalog files.
type DatasetSettings struct {
	// MetadataPath is a CSV file with at least id and title columns.
	MetadataPath string

	// VectorsPath is a 2-D .npy matrix whose rows match the metadata rows.
	VectorsPath string
}

// IsConfigured returns true if both files are set.
func (d DatasetSettings) IsConfigured() bool {
	return d.MetadataPath != "" && d.VectorsPath != ""
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name (Ollama, OpenAI).
	Model string

	// Path is the word-vector file (fastText).
	Path string

	// BaseURL is the API endpoint (Ollama, OpenAI-compatible).
	BaseURL string

	// APIKey is the API key (OpenAI).
	APIKey string

	// Dimensions overrides the model's default output size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	if e.Provider == EmbeddingProviderFastText && e.Path == "" {
		return false
	}
	return true
}

// IndexSettings holds approximate index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// Config holds construction parameters; Dimension is taken from the dataset.
	Config IndexConfig
}

// HistorySettings holds visit history configuration.
type HistorySettings struct {
	// Capacity is the maximum number of entries per session.
	Capacity int

	// EscalateAfter is the number of consecutive storage failures after
	// which storage is reported as degraded.
	EscalateAfter int
}

// StorageSettings holds durable key-value store configuration.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// Path is the data directory for file-based backends.
	Path string

	// RedisAddr is host:port for the redis backend.
	RedisAddr string

	// RedisPassword authenticates to the redis backend. Empty means none.
	RedisPassword string
}

// WikiSettings holds encyclopedia client configuration.
type WikiSettings struct {
	// Language is the wiki language edition, e.g. "ru" or "en".
	Language string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Dataset   DatasetSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	History   HistorySettings
	Storage   StorageSettings
	Wiki      WikiSettings
}

// Default setting values.
const (
	DefaultEscalateAfter = 5
	DefaultWikiLanguage  = "ru"
)

// DefaultAppSettings returns settings with sensible defaults.
// Dataset files are left unset; they must be configured explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderFastText,
		},
		Index: IndexSettings{
			Backend: IndexBackendLSH,
			Config:  IndexConfig{}.WithDefaults(),
		},
		History: HistorySettings{
			Capacity:      DefaultHistoryCapacity,
			EscalateAfter: DefaultEscalateAfter,
		},
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
		Wiki: WikiSettings{
			Language: DefaultWikiLanguage,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderFastText,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageBackendSQLite,
		StorageBackendBadger,
		StorageBackendRedis,
		StorageBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each network provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderOllama: "nomic-embed-text",
		EmbeddingProviderOpenAI: "text-embedding-3-small",
	}
}
