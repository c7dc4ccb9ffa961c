package config

import "os"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Data: DataConfig{
			AHJPath: "data/ahj_services.csv",
			SBSPath: "data/sbs_codes.csv",
		},
		Ledger: LedgerConfig{
			ResultsPath:   "out/results.csv",
			FailuresPath:  "out/failures.csv",
			MappingsPath:  "out/mappings.csv",
			ValidatedPath: "out/validated.csv",
		},
		Retrieval: RetrievalConfig{
			CachePath: "out/embeddings.db",
			TopK:      3,
		},
		LLM: LLMConfig{
			BaseURL: "https://api.fireworks.ai/inference/v1/chat/completions",
			Model:   "accounts/fireworks/models/deepseek-v3-0324",
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://api.fireworks.ai/inference/v1/embeddings",
			Model:   "BAAI/bge-small-en-v1.5",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// WriteDefault writes a commented default configuration to a file.
func WriteDefault(path string) error {
	content := `# AutoMapper Configuration
version: "1"

# Input record sets
data:
  ahj_path: data/ahj_services.csv
  sbs_path: data/sbs_codes.csv

# Run output files
ledger:
  results_path: out/results.csv
  failures_path: out/failures.csv
  mappings_path: out/mappings.csv
  validated_path: out/validated.csv

# Vector retrieval
retrieval:
  cache_path: out/embeddings.db
  # Candidates retrieved per unmatched record
  top_k: 3

# Completion provider
# Requires: FIREWORKS_API_KEY env var
llm:
  base_url: https://api.fireworks.ai/inference/v1/chat/completions
  model: accounts/fireworks/models/deepseek-v3-0324

# Embedding provider (shares FIREWORKS_API_KEY)
embedding:
  base_url: https://api.fireworks.ai/inference/v1/embeddings
  model: BAAI/bge-small-en-v1.5

# Review API server
server:
  addr: ":8080"
`
	return os.WriteFile(path, []byte(content), 0644)
}
