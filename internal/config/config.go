package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig points at one OpenAI-compatible or Ollama endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig holds chunking and retrieval parameters. ChunkOverlap is a
// pointer so an explicit zero is distinguishable from an absent key.
type RAGConfig struct {
	ChunkSize    int  `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap"`
	TopK         int  `yaml:"top_k"`
}

// StorageConfig locates the on-disk stores and the vector collection.
type StorageConfig struct {
	DataDir    string `yaml:"data_dir"`
	Collection string `yaml:"collection"`
}

type Config struct {
	// UserAgent identifies the caller to the SEC, per its access policy.
	// Required for every EDGAR request; has no default.
	UserAgent string        `yaml:"user_agent"`
	Storage   StorageConfig `yaml:"storage"`
	EmbedLLM  LLMConfig     `yaml:"embed_llm"`
	InferLLM  LLMConfig     `yaml:"inference_llm"`
	RAG       RAGConfig     `yaml:"rag"`
}

// LoadConfig reads a YAML config from path. A missing file yields defaults
// so the tool works out of the box against a local Ollama.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.Collection == "" {
		cfg.Storage.Collection = "filings"
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.EmbedLLM.BaseURL == "" && cfg.EmbedLLM.Provider == "ollama" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text"
	}
	if cfg.InferLLM.Model == "" {
		cfg.InferLLM.Model = "gpt-4o-mini"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 800
	}
	if cfg.RAG.ChunkOverlap == nil {
		overlap := 100
		cfg.RAG.ChunkOverlap = &overlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
}
