package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
)

// Progress checkpoints reported by Workflow.Run.
const (
	ProgressDescribing = 20
	ProgressRendering  = 60
	ProgressDone       = 100
)

// ProgressLabel returns the status line shown for a progress percentage.
func ProgressLabel(percent int) string {
	switch {
	case percent < 40:
		return "Analyzing your image with Gemini AI..."
	case percent < 80:
		return "Generating paper art transformation..."
	default:
		return "Finalizing your artwork..."
	}
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(percent int, label string)

// Credits is the part of the credit ledger the workflow needs.
type Credits interface {
	HasCredits() bool
	Deduct() bool
}

// History stores successful generations.
type History interface {
	AddImage(item models.ImageHistoryItem) bool
}

// Recorder logs every attempt. *db.DB satisfies it.
type Recorder interface {
	InsertGeneration(rec *models.GenerationRecord) error
}

// Request is one generation request.
type Request struct {
	Image     Image
	Intensity models.StyleIntensity
	Ratio     models.AspectRatio
	Email     string
	UserID    string
}

// Result is a successful generation.
type Result struct {
	Item     models.ImageHistoryItem
	Duration time.Duration
	// Charged is false when the credit could not be deducted after the
	// image was produced, e.g. another process spent the last one.
	Charged bool
}

// Workflow runs describe then render, charging a credit only on success.
type Workflow struct {
	describer Describer
	renderer  Renderer
	credits   Credits
	history   History
	recorder  Recorder
	now       func() time.Time
	newID     func() string
}

// NewWorkflow wires a workflow. recorder may be nil.
func NewWorkflow(describer Describer, renderer Renderer, credits Credits, history History, recorder Recorder) *Workflow {
	return &Workflow{
		describer: describer,
		renderer:  renderer,
		credits:   credits,
		history:   history,
		recorder:  recorder,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run generates one paper-art image. It returns ErrNoCredits or ErrNoImage
// before doing any work when a precondition fails. External call failures
// are returned as-is; there is no retry.
func (w *Workflow) Run(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if !w.credits.HasCredits() {
		return nil, ErrNoCredits
	}
	if req.Image.IsZero() {
		return nil, ErrNoImage
	}
	if !req.Intensity.Valid() {
		req.Intensity = models.IntensityModerate
	}
	if req.Ratio == "" {
		req.Ratio = models.DefaultAspectRatio
	}

	start := w.now()
	report := func(p int) {
		if progress != nil {
			progress(p, ProgressLabel(p))
		}
	}

	report(ProgressDescribing)
	description, err := w.describer.Describe(ctx, req.Image, models.ArtStylePaper, req.Intensity)
	if err != nil {
		w.record(req, start, "", "", err)
		return nil, fmt.Errorf("failed to describe image: %w", err)
	}

	report(ProgressRendering)
	imageURL, err := w.renderer.Render(ctx, description, req.Ratio)
	if err != nil {
		w.record(req, start, description, "", err)
		return nil, err
	}

	report(ProgressDone)

	item := models.ImageHistoryItem{
		ID:        w.newID(),
		URL:       imageURL,
		Prompt:    description,
		Timestamp: w.now().UTC().Format(time.RFC3339),
		UserID:    req.UserID,
	}

	charged := w.credits.Deduct()
	if !charged {
		logger.Warn("generation finished without a credit to deduct", "id", item.ID)
	}

	if !w.history.AddImage(item) {
		logger.Warn("generated image not saved to history", "id", item.ID)
	}

	w.record(req, start, description, imageURL, nil)

	return &Result{
		Item:     item,
		Duration: w.now().Sub(start),
		Charged:  charged,
	}, nil
}

func (w *Workflow) record(req Request, start time.Time, prompt, imageURL string, runErr error) {
	if w.recorder == nil {
		return
	}

	rec := &models.GenerationRecord{
		Timestamp:      start,
		Email:          req.Email,
		StyleIntensity: req.Intensity,
		AspectRatio:    req.Ratio,
		Prompt:         prompt,
		ImageURL:       imageURL,
		Status:         models.GenerationSucceeded,
		DurationMs:     w.now().Sub(start).Milliseconds(),
	}
	if runErr != nil {
		rec.Status = models.GenerationFailed
		rec.Error = runErr.Error()
	}

	if err := w.recorder.InsertGeneration(rec); err != nil {
		logger.Error("failed to record generation", "error", err)
	}
}
