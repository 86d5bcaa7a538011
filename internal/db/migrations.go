package db

import (
	"context"
	"fmt"
)

// FixLegacyTimeFormats rewrites timestamps that were stored with a zone
// suffix (" +0000 UTC") so SQLite's date functions can read them.
func (db *DB) FixLegacyTimeFormats() error {
	queries := []string{
		`UPDATE generations
		 SET timestamp = SUBSTR(timestamp, 1, 19)
		 WHERE length(timestamp) > 19 AND timestamp LIKE '% UTC'`,

		`UPDATE kv
		 SET updated_at = SUBSTR(updated_at, 1, 19)
		 WHERE length(updated_at) > 19 AND updated_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}

	return nil
}
