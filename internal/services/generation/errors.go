// Package generation turns an uploaded photo into a paper-art rendition.
// A vision model describes the photo and an image endpoint renders that
// description.
package generation

import "errors"

var (
	// ErrNoCredits means the daily credits are used up.
	ErrNoCredits = errors.New("daily credits used up")
	// ErrNoImage means generation was requested without an uploaded image.
	ErrNoImage = errors.New("no image uploaded")
	// ErrEmptyDescription means the vision model returned no text.
	ErrEmptyDescription = errors.New("image description is empty")
	// ErrNotImage means the uploaded file is not an image.
	ErrNotImage = errors.New("file is not an image")
	// ErrImageTooLarge means the uploaded file exceeds MaxImageBytes.
	ErrImageTooLarge = errors.New("image is too large")
	// ErrRenderFailed means the rendered image could not be loaded.
	ErrRenderFailed = errors.New("failed to generate styled image")
)
