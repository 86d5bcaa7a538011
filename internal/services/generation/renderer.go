package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
)

// Renderer turns a text prompt into the URL of a rendered image.
type Renderer interface {
	Render(ctx context.Context, prompt string, ratio models.AspectRatio) (string, error)
}

// PollinationsRenderer builds prompt URLs for a pollinations-style endpoint
// and checks that the image behind the URL loads.
type PollinationsRenderer struct {
	httpClient *http.Client
	seed       func() int64
	endpoint   string
	model      string
}

// NewPollinationsRenderer returns a renderer. A nil client means
// http.DefaultClient.
func NewPollinationsRenderer(client *http.Client, endpoint, model string) *PollinationsRenderer {
	if client == nil {
		client = http.DefaultClient
	}
	return &PollinationsRenderer{
		httpClient: client,
		seed:       func() int64 { return time.Now().UnixMilli() },
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
	}
}

// ImageURL returns the URL that renders prompt at the preset size for ratio.
// Unknown ratios render square.
func (r *PollinationsRenderer) ImageURL(prompt string, ratio models.AspectRatio, seed int64) string {
	size := ratio.Size()

	q := url.Values{}
	q.Set("width", strconv.Itoa(size.Width))
	q.Set("height", strconv.Itoa(size.Height))
	q.Set("seed", strconv.FormatInt(seed, 10))
	q.Set("nologo", "true")
	q.Set("enhance", "true")
	q.Set("model", r.model)

	return r.endpoint + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}

// Render implements Renderer. The URL is returned only once a GET of it
// answers 2xx with an image body.
func (r *PollinationsRenderer) Render(ctx context.Context, prompt string, ratio models.AspectRatio) (string, error) {
	imageURL := r.ImageURL(prompt, ratio, r.seed())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create render request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w (status %d)", ErrRenderFailed, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(resp.Body, head)
		contentType = http.DetectContentType(head[:n])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: unexpected content type %q", ErrRenderFailed, contentType)
	}

	// Drain so the server finishes rendering and the connection is reused.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	logger.Debug("image rendered", "ratio", string(ratio), "model", r.model)
	return imageURL, nil
}
