package generation

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes is the largest photo accepted for upload.
const MaxImageBytes = 10 * 1024 * 1024

// Image is an uploaded photo.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsZero reports whether no image is loaded.
func (i Image) IsZero() bool {
	return len(i.Data) == 0
}

// Base64 returns the image bytes in standard base64.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// LoadImage reads the photo at path and checks that it is an image no larger
// than MaxImageBytes. A leading "~/" is expanded to the home directory.
func LoadImage(path string) (Image, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return Image{}, ErrNoImage
	}

	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Image{}, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return Image{}, fmt.Errorf("%s: %w", path, ErrNotImage)
	}
	if info.Size() > MaxImageBytes {
		return Image{}, fmt.Errorf("%s is %d bytes: %w", filepath.Base(path), info.Size(), ErrImageTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrImageTooLarge)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, fmt.Errorf("%s (%s): %w", filepath.Base(path), mimeType, ErrNotImage)
	}

	return Image{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
