package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/paperart-tui/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadImage(t *testing.T) {
	img, err := LoadImage(writeFile(t, "photo.png", pngHeader))
	if err != nil {
		t.Fatalf("LoadImage() failed: %v", err)
	}
	if img.MIMEType != "image/png" || img.Name != "photo.png" {
		t.Errorf("image = %+v", img)
	}
	if img.Base64() != base64.StdEncoding.EncodeToString(pngHeader) {
		t.Error("Base64() mismatch")
	}
}

func TestLoadImage_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want error
	}{
		{"empty path", func(*testing.T) string { return "  " }, ErrNoImage},
		{"text file", func(t *testing.T) string { return writeFile(t, "notes.txt", []byte("hello")) }, ErrNotImage},
		{"directory", func(t *testing.T) string { return t.TempDir() }, ErrNotImage},
		{"too large", func(t *testing.T) string {
			return writeFile(t, "huge.png", append(pngHeader, make([]byte, MaxImageBytes)...))
		}, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadImage(tt.path(t))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildPrompt(t *testing.T) {
	for _, intensity := range models.StyleIntensities {
		p := BuildPrompt(models.ArtStylePaper, intensity)
		if !strings.Contains(p, "paper art style") {
			t.Errorf("%s prompt missing style: %q", intensity, p)
		}
		if !strings.Contains(p, intensityDirections[intensity]) {
			t.Errorf("%s prompt missing direction", intensity)
		}
	}

	if BuildPrompt("", "bogus") != BuildPrompt(models.ArtStylePaper, models.IntensityModerate) {
		t.Error("unknown intensity did not fall back to moderate")
	}
}

func TestGeminiDescriber_Describe(t *testing.T) {
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, key must not be in the URL", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  A paper fox "},{"text":"in snow"}]}}]}`)
	}))
	defer srv.Close()

	d := NewGeminiDescriber(srv.Client(), srv.URL+"/", "gemini-test", "secret")
	img := Image{MIMEType: "image/png", Data: pngHeader}

	got, err := d.Describe(context.Background(), img, models.ArtStylePaper, models.IntensityStrong)
	if err != nil {
		t.Fatalf("Describe() failed: %v", err)
	}
	if got != "A paper fox in snow" {
		t.Errorf("Describe() = %q", got)
	}

	parts := gotReq.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil {
		t.Fatalf("parts = %+v", parts)
	}
	if parts[1].InlineData.MimeType != "image/png" || parts[1].InlineData.Data != img.Base64() {
		t.Errorf("inline data = %+v", parts[1].InlineData)
	}
	if parts[0].Text != BuildPrompt(models.ArtStylePaper, models.IntensityStrong) {
		t.Errorf("prompt = %q", parts[0].Text)
	}
}

func TestGeminiDescriber_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		wantIs  error
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid"}}`, "API key not valid", nil},
		{"plain error", http.StatusInternalServerError, `oops`, "status 500", nil},
		{"bad json", http.StatusOK, `{`, "failed to parse", nil},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY", nil},
		{"empty", http.StatusOK, `{"candidates":[]}`, "", ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			d := NewGeminiDescriber(srv.Client(), srv.URL, "m", "k")
			_, err := d.Describe(context.Background(), Image{MIMEType: "image/png", Data: pngHeader}, models.ArtStylePaper, models.IntensitySubtle)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
		})
	}

	d := NewGeminiDescriber(nil, "http://unused", "m", "k")
	if _, err := d.Describe(context.Background(), Image{}, models.ArtStylePaper, models.IntensitySubtle); !errors.Is(err, ErrNoImage) {
		t.Errorf("empty image err = %v", err)
	}
}

func TestPollinationsRenderer_ImageURL(t *testing.T) {
	r := NewPollinationsRenderer(nil, "https://image.example.com/", "flux")

	got := r.ImageURL("a paper fox & friends", "16:9", 42)

	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "image.example.com" {
		t.Errorf("host = %s", u.Host)
	}
	if u.Path != "/prompt/a paper fox & friends" {
		t.Errorf("path = %q", u.Path)
	}
	q := u.Query()
	want := map[string]string{
		"width": "1920", "height": "1080", "seed": "42",
		"nologo": "true", "enhance": "true", "model": "flux",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, q.Get(k), v)
		}
	}

	square := r.ImageURL("x", "unknown", 1)
	if !strings.Contains(square, "width=1024") || !strings.Contains(square, "height=1024") {
		t.Errorf("unknown ratio URL = %s", square)
	}
}

func TestPollinationsRenderer_Render(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        []byte
		wantErr     bool
	}{
		{"image", http.StatusOK, "image/jpeg", []byte("jpegdata"), false},
		{"sniffed image", http.StatusOK, "", pngHeader, false},
		{"html", http.StatusOK, "text/html", []byte("<html>"), true},
		{"server error", http.StatusBadGateway, "image/png", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.URL.Path, "/prompt/") {
					t.Errorf("path = %s", r.URL.Path)
				}
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				} else {
					w.Header()["Content-Type"] = nil
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			r := NewPollinationsRenderer(srv.Client(), srv.URL, "flux")
			r.seed = func() int64 { return 7 }

			got, err := r.Render(context.Background(), "fox", "1:1")
			if tt.wantErr {
				if !errors.Is(err, ErrRenderFailed) {
					t.Errorf("err = %v, want ErrRenderFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			if got != r.ImageURL("fox", "1:1", 7) {
				t.Errorf("Render() = %s", got)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "out")
	path, err := Download(context.Background(), srv.Client(), srv.URL, dir, 0)
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), "paper-art-1-") || filepath.Ext(path) != ".jpg" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpegdata" {
		t.Errorf("contents = %q, %v", data, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestDownload_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Download(context.Background(), srv.Client(), srv.URL, t.TempDir(), 0); err == nil {
		t.Error("expected error for 404")
	}
}

func TestDownload_ContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	tests := []struct {
		name        string
		contentType string
		body        []byte
		wantErr     bool
		wantExt     string
	}{
		{"HTMLPage", "text/html; charset=utf-8", []byte("<html>rate limited</html>"), true, ""},
		{"JSON", "application/json", []byte(`{"error":"busy"}`), true, ""},
		{"Malformed", "image/", []byte("x"), true, ""},
		{"WebPWithParams", "image/webp; q=1", []byte("webpdata"), false, ".webp"},
		{"SniffedPNG", "", png, false, ".png"},
		{"SniffedHTML", "", []byte("<!DOCTYPE html><html></html>"), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType == "" {
					w.Header()["Content-Type"] = nil
				} else {
					w.Header().Set("Content-Type", tt.contentType)
				}
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "out")
			path, err := Download(context.Background(), srv.Client(), srv.URL, dir, 0)
			if tt.wantErr {
				if !errors.Is(err, ErrNotImage) {
					t.Fatalf("err = %v, want ErrNotImage", err)
				}
				if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
					t.Error("nothing should be written for a non-image response")
				}
				return
			}
			if err != nil {
				t.Fatalf("Download() failed: %v", err)
			}
			if filepath.Ext(path) != tt.wantExt {
				t.Errorf("path = %s, want %s extension", path, tt.wantExt)
			}
			data, err := os.ReadFile(path)
			if err != nil || string(data) != string(tt.body) {
				t.Errorf("contents = %q, %v", data, err)
			}
		})
	}
}

func TestDownloadFilename(t *testing.T) {
	at := time.UnixMilli(1760000000000)
	if got := DownloadFilename(2, at, ""); got != "paper-art-3-1760000000000.png" {
		t.Errorf("DownloadFilename() = %s", got)
	}
}

func TestShare(t *testing.T) {
	orig := clipboardWrite
	defer func() { clipboardWrite = orig }()

	var copied string
	clipboardWrite = func(s string) error { copied = s; return nil }

	if err := Share("https://example.com/a.png"); err != nil {
		t.Fatalf("Share() failed: %v", err)
	}
	if copied != "https://example.com/a.png" {
		t.Errorf("copied = %q", copied)
	}

	clipboardWrite = func(string) error { return errors.New("no display") }
	if err := Share("x"); err == nil {
		t.Error("expected error when clipboard fails")
	}
}

func TestProgressLabel(t *testing.T) {
	tests := map[int]string{
		0:   "Analyzing your image with Gemini AI...",
		20:  "Analyzing your image with Gemini AI...",
		39:  "Analyzing your image with Gemini AI...",
		40:  "Generating paper art transformation...",
		60:  "Generating paper art transformation...",
		80:  "Finalizing your artwork...",
		100: "Finalizing your artwork...",
	}
	for p, want := range tests {
		if got := ProgressLabel(p); got != want {
			t.Errorf("ProgressLabel(%d) = %q, want %q", p, got, want)
		}
	}
}
