package models

import "time"

// GenerationStatus is the outcome of one generation attempt.
type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "success"
	GenerationFailed    GenerationStatus = "failed"
)

// GenerationRecord is one row of the generation log (DB model).
type GenerationRecord struct {
	Timestamp      time.Time
	Email          string
	StyleIntensity StyleIntensity
	AspectRatio    AspectRatio
	Prompt         string
	ImageURL       string
	Error          string
	Status         GenerationStatus
	ID             int64
	DurationMs     int64
}

// DailyGenerationCount is the number of generations on one day.
type DailyGenerationCount struct {
	Date      time.Time
	Succeeded int
	Failed    int
}

// GenerationStats aggregates the generation log.
type GenerationStats struct {
	LastGeneration time.Time
	Total          int
	Succeeded      int
	Failed         int
	AvgDurationMs  float64
}

// SuccessRate returns the share of successful generations, 0-100.
func (s GenerationStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}
