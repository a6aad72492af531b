package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-live-preview/internal/model"
)

func TestNewJSONStore(t *testing.T) {
	tempDir := t.TempDir() // Creates a temporary directory for the test
	configPath := filepath.Join(tempDir, ".block_config")

	store, err := NewJSONStore(configPath, nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	if store == nil {
		t.Fatal("NewJSONStore() returned nil store")
	}

	// Check if the base directory was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Errorf("NewJSONStore() did not create the base directory: %s", configPath)
	}
	if store.BasePath != configPath {
		t.Errorf("BasePath = %q, want %q", store.BasePath, configPath)
	}
}

func TestSaveLoadBlockConfig(t *testing.T) {
	ctx := context.Background()
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	cfg := model.NewBlockConfig()
	cfg.SetEntityIDFor("article", 7)
	cfg.SetEntityIDFor("learn_article", 0)
	cfg.SetViewMode("teaser")

	if err := store.SaveBlockConfig(ctx, "livepreviewblock", cfg); err != nil {
		t.Fatalf("SaveBlockConfig() failed: %v", err)
	}

	expectedFilePath := filepath.Join(store.BasePath, "livepreviewblock.json")
	if _, err := os.Stat(expectedFilePath); os.IsNotExist(err) {
		t.Fatalf("SaveBlockConfig() did not create the expected file: %s", expectedFilePath)
	}

	loaded, err := store.LoadBlockConfig(ctx, "livepreviewblock")
	if err != nil {
		t.Fatalf("LoadBlockConfig() failed: %v", err)
	}
	if id, ok := loaded.EntityIDFor("article"); !ok || id != 7 {
		t.Errorf("EntityIDFor(article) = %d, %v; want 7, true", id, ok)
	}
	if _, ok := loaded.EntityIDFor("learn_article"); ok {
		t.Errorf("EntityIDFor(learn_article) should be unset")
	}
	if loaded.ViewMode() != "teaser" {
		t.Errorf("ViewMode() = %q, want teaser", loaded.ViewMode())
	}
}

func TestLoadBlockConfig_NeverConfigured(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	cfg, err := store.LoadBlockConfig(context.Background(), "unconfigured")
	if err != nil {
		t.Fatalf("LoadBlockConfig() for a missing block returned error: %v", err)
	}
	if cfg.ViewMode() != "" {
		t.Errorf("ViewMode() = %q, want empty", cfg.ViewMode())
	}
}

func TestLoadBlockConfig_Corrupt(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	path := filepath.Join(store.BasePath, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := store.LoadBlockConfig(context.Background(), "broken"); err == nil {
		t.Error("LoadBlockConfig() succeeded on corrupt JSON, expected error")
	}
}

func TestDeleteBlockConfig(t *testing.T) {
	ctx := context.Background()
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	if err := store.SaveBlockConfig(ctx, "gone", model.NewBlockConfig()); err != nil {
		t.Fatalf("SaveBlockConfig() failed: %v", err)
	}

	if err := store.DeleteBlockConfig(ctx, "gone"); err != nil {
		t.Fatalf("DeleteBlockConfig() failed: %v", err)
	}
	// Idempotent delete
	if err := store.DeleteBlockConfig(ctx, "gone"); err != nil {
		t.Errorf("second DeleteBlockConfig() failed: %v", err)
	}
	if err := store.SaveBlockConfig(ctx, "", model.NewBlockConfig()); err == nil {
		t.Error("SaveBlockConfig() with empty ID should fail")
	}
}
