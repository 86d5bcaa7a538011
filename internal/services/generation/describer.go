package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
)

// Describer turns a photo into a text prompt for the renderer.
type Describer interface {
	Describe(ctx context.Context, img Image, style models.ArtStyle, intensity models.StyleIntensity) (string, error)
}

// intensityDirections shape how far the description pushes the paper look.
var intensityDirections = map[models.StyleIntensity]string{
	models.IntensitySubtle:   "Keep the scene faithful to the photo with a light paper texture and gentle folded edges.",
	models.IntensityModerate: "Rebuild the scene from layered cut paper with visible depth, soft shadows between layers and crisp edges.",
	models.IntensityStrong:   "Reimagine the scene as bold layered paper craft with pronounced folds, deep shadows and saturated paper colors.",
	models.IntensityExtreme:  "Transform the scene into an intricate, exaggerated paper sculpture: dramatic origami folds, many stacked layers, strong directional light.",
}

// BuildPrompt returns the instruction sent alongside the photo.
func BuildPrompt(style models.ArtStyle, intensity models.StyleIntensity) string {
	if style == "" {
		style = models.ArtStylePaper
	}
	direction, ok := intensityDirections[intensity]
	if !ok {
		direction = intensityDirections[models.IntensityModerate]
	}

	var b strings.Builder
	b.WriteString("Describe this image as a single prompt for an image generator that will recreate it in a ")
	b.WriteString(string(style))
	b.WriteString(" art style. ")
	b.WriteString(direction)
	b.WriteString(" Mention the main subjects, their arrangement, colors and lighting. ")
	b.WriteString("Answer with the prompt only, in under 120 words.")
	return b.String()
}

// GeminiDescriber calls the Gemini generateContent REST API.
type GeminiDescriber struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// NewGeminiDescriber returns a describer. A nil client means http.DefaultClient.
func NewGeminiDescriber(client *http.Client, endpoint, model, apiKey string) *GeminiDescriber {
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiDescriber{
		httpClient: client,
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Describe implements Describer.
func (d *GeminiDescriber) Describe(ctx context.Context, img Image, style models.ArtStyle, intensity models.StyleIntensity) (string, error) {
	if img.IsZero() {
		return "", ErrNoImage
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: BuildPrompt(style, intensity)},
				{InlineData: &geminiInlineData{MimeType: img.MIMEType, Data: img.Base64()}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode describe request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", d.endpoint, url.PathEscape(d.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create describe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("describe request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read describe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("describe request failed (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("describe request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse describe response: %w", err)
	}

	if parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("image was blocked by the model: %s", parsed.PromptFeedback.BlockReason)
	}

	var text strings.Builder
	for _, c := range parsed.Candidates {
		for _, p := range c.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}

	description := strings.TrimSpace(text.String())
	if description == "" {
		return "", ErrEmptyDescription
	}

	logger.Debug("image described", "model", d.model, "chars", len(description))
	return description, nil
}
