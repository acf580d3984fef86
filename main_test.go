package main

import (
	"path/filepath"
	"testing"

	"github.com/lucasmn/chessroyale/config"
	"github.com/lucasmn/chessroyale/storage"
)

func TestInitializeServices(t *testing.T) {
	t.Run("without persistence", func(t *testing.T) {
		svc, store, err := initializeServices(&config.Config{})
		if err != nil {
			t.Fatalf("initializeServices failed: %v", err)
		}
		defer store.Close()

		if svc == nil {
			t.Fatal("Expected a game service")
		}
		if _, ok := store.(storage.NopStore); !ok {
			t.Errorf("Expected NopStore without a db path, got %T", store)
		}
	})

	t.Run("with sqlite store", func(t *testing.T) {
		cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "royale.db")}

		svc, store, err := initializeServices(cfg)
		if err != nil {
			t.Fatalf("initializeServices failed: %v", err)
		}
		defer store.Close()

		if svc == nil {
			t.Fatal("Expected a game service")
		}
		if _, ok := store.(storage.NopStore); ok {
			t.Error("Expected a real store when a db path is configured")
		}
	})
}
