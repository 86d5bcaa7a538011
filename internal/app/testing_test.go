package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/paperart-tui/internal/config"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/services/generation"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

type stubDescriber struct{}

func (stubDescriber) Describe(context.Context, generation.Image, models.ArtStyle, models.StyleIntensity) (string, error) {
	return "a folded paper fox", nil
}

type stubRenderer struct{}

func (stubRenderer) Render(context.Context, string, models.AspectRatio) (string, error) {
	return "https://img.example/fox.png", nil
}

func newTestManager(t *testing.T) *services.Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:           dir,
		StorePath:         filepath.Join(dir, "storage.json"),
		StoreBackend:      "file",
		DatabasePath:      filepath.Join(dir, "test.db"),
		DownloadDir:       filepath.Join(dir, "downloads"),
		GeminiAPIKey:      "test",
		HTTPTimeout:       5 * time.Second,
		DailyCreditLimit:  10,
		CreditCost:        1,
		StorageQuotaBytes: storage.DefaultQuotaBytes,
	}
	mgr, err := services.NewManager(cfg,
		services.WithDescriber(stubDescriber{}),
		services.WithRenderer(stubRenderer{}),
		services.WithNotifier(func(string, string) error { return nil }),
	)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}
