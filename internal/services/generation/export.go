package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/j-veylop/paperart-tui/internal/logger"
)

// DownloadFilename returns the file name used for the index-th result.
func DownloadFilename(index int, at time.Time, ext string) string {
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("paper-art-%d-%d%s", index+1, at.UnixMilli(), ext)
}

// Download fetches imageURL into dir and returns the written path. A
// response that is not an image fails with ErrNotImage and writes nothing.
func Download(ctx context.Context, client *http.Client, imageURL, dir string, index int) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image (status %d)", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(resp.Body, head)
		head = head[:n]
		contentType = http.DetectContentType(head)
		body = io.MultiReader(bytes.NewReader(head), resp.Body)
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: unexpected content type %q", ErrNotImage, contentType)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(dir, DownloadFilename(index, time.Now(), extensionFor(contentType)))

	// Write to temp file first, then rename
	tmpFile := path + ".tmp"
	f, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	logger.Info("image downloaded", "path", path)
	return path, nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".png"
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// clipboardWrite is replaced in tests.
var clipboardWrite = func(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	return clipboard.WriteAll(text)
}

// Share copies imageURL to the system clipboard.
func Share(imageURL string) error {
	if err := clipboardWrite(imageURL); err != nil {
		return fmt.Errorf("failed to copy image URL: %w", err)
	}
	return nil
}
