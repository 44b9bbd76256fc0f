package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.DataDir != "data" || cfg.Storage.Collection != "filings" {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.EmbedLLM.Provider != "ollama" || cfg.EmbedLLM.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected embed defaults: %+v", cfg.EmbedLLM)
	}
	if cfg.RAG.ChunkSize != 800 || *cfg.RAG.ChunkOverlap != 100 || cfg.RAG.TopK != 5 {
		t.Errorf("unexpected rag defaults: %+v", cfg.RAG)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
user_agent: "Example Corp admin@example.com"
storage:
  data_dir: /var/lib/filings
embed_llm:
  provider: openai
  key: sk-test
  model: text-embedding-3-small
rag:
  chunk_size: 500
  top_k: 8
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.UserAgent != "Example Corp admin@example.com" {
		t.Errorf("user_agent = %q", cfg.UserAgent)
	}
	if cfg.Storage.DataDir != "/var/lib/filings" {
		t.Errorf("data_dir = %q", cfg.Storage.DataDir)
	}
	if cfg.Storage.Collection != "filings" {
		t.Errorf("collection default not applied: %q", cfg.Storage.Collection)
	}
	if cfg.EmbedLLM.Provider != "openai" || cfg.EmbedLLM.Model != "text-embedding-3-small" {
		t.Errorf("embed_llm = %+v", cfg.EmbedLLM)
	}
	if cfg.EmbedLLM.BaseURL != "" {
		t.Errorf("no base_url default for openai, got %q", cfg.EmbedLLM.BaseURL)
	}
	if cfg.RAG.ChunkSize != 500 || *cfg.RAG.ChunkOverlap != 100 || cfg.RAG.TopK != 8 {
		t.Errorf("rag = %+v", cfg.RAG)
	}
}

func TestLoadConfigZeroOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
rag:
  chunk_overlap: 0
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *cfg.RAG.ChunkOverlap != 0 {
		t.Errorf("explicit zero overlap must not be replaced, got %d", *cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.ChunkSize != 800 {
		t.Errorf("chunk_size default not applied: %d", cfg.RAG.ChunkSize)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: [notamap"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
