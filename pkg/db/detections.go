package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Detection is one recorded classification answer.
type Detection struct {
	ID        string    `json:"id" yaml:"id"`
	Host      string    `json:"host" yaml:"host"`
	URL       string    `json:"url" yaml:"url"`
	IsMedium  bool      `json:"is_medium" yaml:"is_medium"`
	Score     int       `json:"score" yaml:"score"`
	Reasons   []string  `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Source    string    `json:"source" yaml:"source"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RecordDetection appends one answer to the history, assigning an id
// when the caller did not.
func (db *DB) RecordDetection(d Detection) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	var reasons any
	if len(d.Reasons) > 0 {
		raw, err := json.Marshal(d.Reasons)
		if err != nil {
			return "", fmt.Errorf("failed to encode reasons: %w", err)
		}
		reasons = string(raw)
	}

	_, err := db.Exec(`
		INSERT INTO detections (id, host, url, is_medium, score, reasons, source, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Host, d.URL, d.IsMedium, d.Score, reasons, d.Source, d.Title)
	if err != nil {
		return "", fmt.Errorf("failed to record detection: %w", err)
	}

	return d.ID, nil
}

// RecentDetections returns the newest entries, newest first.
func (db *DB) RecentDetections(limit int) ([]Detection, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, host, url, is_medium, score, reasons, source, title, created_at
		FROM detections
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var out []Detection
	for rows.Next() {
		var d Detection
		var reasons, title sql.NullString
		if err := rows.Scan(&d.ID, &d.Host, &d.URL, &d.IsMedium, &d.Score, &reasons, &d.Source, &title, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		if reasons.Valid && reasons.String != "" {
			if err := json.Unmarshal([]byte(reasons.String), &d.Reasons); err != nil {
				return nil, fmt.Errorf("failed to decode reasons for %s: %w", d.ID, err)
			}
		}
		d.Title = title.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detections: %w", err)
	}

	return out, nil
}

// HistoryStats summarizes the stored history.
type HistoryStats struct {
	Total  int `json:"total" yaml:"total"`
	Medium int `json:"medium" yaml:"medium"`
}

// HistoryStats counts stored detections by outcome.
func (db *DB) HistoryStats() (HistoryStats, error) {
	var stats HistoryStats
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_medium THEN 1 ELSE 0 END), 0)
		FROM detections
	`).Scan(&stats.Total, &stats.Medium)
	if err != nil {
		return stats, fmt.Errorf("failed to count detections: %w", err)
	}
	return stats, nil
}

// PurgeDetectionsBefore deletes history older than the cutoff and
// reports how many rows went. The cutoff is bound in the layout
// CURRENT_TIMESTAMP stores, so the comparison stays textual.
func (db *DB) PurgeDetectionsBefore(cutoff time.Time) (int64, error) {
	result, err := db.Exec("DELETE FROM detections WHERE created_at < ?",
		cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("failed to purge detections: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return n, nil
}
