package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Preference keys the host surfaces understand.
const (
	PrefAutoRedirect = "auto_redirect" // "true"/"false", default true
	PrefThreshold    = "threshold"     // integer override, 0 = engine default
	PrefMirrorBase   = "mirror_base"   // mirror origin override, "" = built-in
)

// Preferences is the typed view over the preference rows.
type Preferences struct {
	AutoRedirect bool   `json:"auto_redirect" yaml:"auto_redirect"`
	Threshold    int    `json:"threshold" yaml:"threshold"`
	MirrorBase   string `json:"mirror_base" yaml:"mirror_base"`
}

// DefaultPreferences returns the behavior with no rows stored:
// redirect automatically, engine-default threshold, built-in mirror.
func DefaultPreferences() Preferences {
	return Preferences{AutoRedirect: true}
}

// SetPreference upserts one preference row.
func (db *DB) SetPreference(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// GetPreference returns the stored value for key and whether it exists.
func (db *DB) GetPreference(key string) (string, bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// LoadPreferences reads every known key into the typed view, filling
// defaults for missing or unparseable rows.
func (db *DB) LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()

	if v, ok, err := db.GetPreference(PrefAutoRedirect); err != nil {
		return prefs, err
	} else if ok {
		if b, err := strconv.ParseBool(v); err == nil {
			prefs.AutoRedirect = b
		}
	}

	if v, ok, err := db.GetPreference(PrefThreshold); err != nil {
		return prefs, err
	} else if ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			prefs.Threshold = n
		}
	}

	if v, ok, err := db.GetPreference(PrefMirrorBase); err != nil {
		return prefs, err
	} else if ok {
		prefs.MirrorBase = v
	}

	return prefs, nil
}

// SavePreferences writes the typed view back as rows.
func (db *DB) SavePreferences(prefs Preferences) error {
	if err := db.SetPreference(PrefAutoRedirect, strconv.FormatBool(prefs.AutoRedirect)); err != nil {
		return err
	}
	if err := db.SetPreference(PrefThreshold, strconv.Itoa(prefs.Threshold)); err != nil {
		return err
	}
	return db.SetPreference(PrefMirrorBase, prefs.MirrorBase)
}
