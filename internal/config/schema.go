// Package config loads the mapper configuration from a YAML file with
// environment overrides for credentials.
package config

// Config is the full mapper configuration.
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Input record sets
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// Run output files
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`

	// Vector retrieval
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`

	// Completion provider
	LLM LLMConfig `yaml:"llm" mapstructure:"llm"`

	// Embedding provider
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`

	// Review API server
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// DataConfig locates the input record sets.
type DataConfig struct {
	AHJPath string `yaml:"ahj_path" mapstructure:"ahj_path"`
	SBSPath string `yaml:"sbs_path" mapstructure:"sbs_path"`
}

// LedgerConfig locates the run output files.
type LedgerConfig struct {
	ResultsPath   string `yaml:"results_path" mapstructure:"results_path"`
	FailuresPath  string `yaml:"failures_path" mapstructure:"failures_path"`
	MappingsPath  string `yaml:"mappings_path" mapstructure:"mappings_path"`
	ValidatedPath string `yaml:"validated_path" mapstructure:"validated_path"`
}

// RetrievalConfig configures the vector index.
type RetrievalConfig struct {
	CachePath string `yaml:"cache_path" mapstructure:"cache_path"`
	TopK      int    `yaml:"top_k" mapstructure:"top_k"`
}

// LLMConfig configures the completion provider. The API key is never read
// from the file, only from FIREWORKS_API_KEY.
type LLMConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
	APIKey  string `yaml:"-" mapstructure:"-"`
}

// EmbeddingConfig configures the embedding provider. Shares the Fireworks
// credential with the completion provider.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
	APIKey  string `yaml:"-" mapstructure:"-"`
}

// ServerConfig configures the review API server.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}
