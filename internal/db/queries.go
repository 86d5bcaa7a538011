package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
)

// InsertGeneration logs a generation attempt.
func (db *DB) InsertGeneration(rec *models.GenerationRecord) error {
	query := `
		INSERT INTO generations (
			timestamp, email, style_intensity, aspect_ratio, prompt,
			image_url, duration_ms, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	status := rec.Status
	if status == "" {
		status = models.GenerationSucceeded
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(sqlTimeLayout),
		nullString(rec.Email),
		string(rec.StyleIntensity),
		string(rec.AspectRatio),
		nullString(rec.Prompt),
		nullString(rec.ImageURL),
		rec.DurationMs,
		string(status),
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		rec.ID = id
	}

	return nil
}

// RecentGenerations returns the most recent generation attempts, newest first.
func (db *DB) RecentGenerations(limit int) ([]models.GenerationRecord, error) {
	query := `
		SELECT id, timestamp, email, style_intensity, aspect_ratio, prompt,
			   image_url, duration_ms, status, error
		FROM generations
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent generations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var records []models.GenerationRecord
	for rows.Next() {
		var rec models.GenerationRecord
		var ts, intensity, ratio, status string
		var email, prompt, imageURL, errStr sql.NullString

		err := rows.Scan(
			&rec.ID,
			&ts,
			&email,
			&intensity,
			&ratio,
			&prompt,
			&imageURL,
			&rec.DurationMs,
			&status,
			&errStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}

		rec.Timestamp = parseTimestamp(ts)
		rec.Email = email.String
		rec.StyleIntensity = models.StyleIntensity(intensity)
		rec.AspectRatio = models.AspectRatio(ratio)
		rec.Prompt = prompt.String
		rec.ImageURL = imageURL.String
		rec.Status = models.GenerationStatus(status)
		rec.Error = errStr.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DailyGenerationCounts returns one entry per local calendar day for the last
// days days, oldest first. Days without generations are zero.
func (db *DB) DailyGenerationCounts(days int) ([]models.DailyGenerationCount, error) {
	if days <= 0 {
		return nil, nil
	}

	query := `
		SELECT
			date(timestamp, 'localtime') as day,
			SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) as succeeded,
			SUM(CASE WHEN status != 'success' THEN 1 ELSE 0 END) as failed
		FROM generations
		WHERE timestamp >= datetime('now', ?)
		GROUP BY day
	`

	rows, err := db.QueryContext(context.Background(), query, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily generations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	byDay := make(map[string]models.DailyGenerationCount)
	for rows.Next() {
		var day string
		var c models.DailyGenerationCount
		if err := rows.Scan(&day, &c.Succeeded, &c.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan daily generations: %w", err)
		}
		byDay[day] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	counts := make([]models.DailyGenerationCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		c := byDay[day.Format("2006-01-02")]
		c.Date = day
		counts = append(counts, c)
	}

	return counts, nil
}

// GenerationStats aggregates the whole generation log.
func (db *DB) GenerationStats() (*models.GenerationStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = 'success' THEN duration_ms END), 0),
			MAX(timestamp)
		FROM generations
	`

	var stats models.GenerationStats
	var last sql.NullString

	err := db.QueryRowContext(context.Background(), query).Scan(
		&stats.Total,
		&stats.Succeeded,
		&stats.AvgDurationMs,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation stats: %w", err)
	}

	stats.Failed = stats.Total - stats.Succeeded
	if last.Valid {
		stats.LastGeneration = parseTimestamp(last.String)
	}

	return &stats, nil
}

// PruneGenerations deletes log rows older than the given duration.
func (db *DB) PruneGenerations(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(sqlTimeLayout)

	result, err := db.ExecContext(context.Background(),
		"DELETE FROM generations WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune generations: %w", err)
	}

	return result.RowsAffected()
}

// parseTimestamp reads a UTC timestamp written by InsertGeneration. SQLite
// may hand back either the plain layout or RFC 3339.
func parseTimestamp(s string) time.Time {
	if t, err := time.ParseInLocation(sqlTimeLayout, s, time.UTC); err == nil {
		return t.Local()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local()
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
