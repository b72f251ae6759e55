package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"mediumgate/models"
	"mediumgate/pkg/db"
)

// openStore loads config and opens the history database.
func openStore(c *cli.Context) (*db.DB, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	database, err := db.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// HistoryAction prints the newest recorded detections.
func HistoryAction(c *cli.Context) error {
	database, err := openStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	limit := c.Int("limit")
	if limit <= 0 {
		limit = 20
	}

	items, err := database.RecentDetections(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	stats, err := database.HistoryStats()
	if err != nil {
		return fmt.Errorf("failed to read history stats: %w", err)
	}

	out := map[string]any{
		"total":      stats.Total,
		"medium":     stats.Medium,
		"detections": items,
	}

	if strings.ToLower(c.String("format")) == "json" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// PurgeAction deletes history entries older than --older-than.
func PurgeAction(c *cli.Context) error {
	maxAge, err := time.ParseDuration(c.String("older-than"))
	if err != nil {
		return fmt.Errorf("invalid older-than duration: %w", err)
	}
	if maxAge <= 0 {
		return fmt.Errorf("older-than must be a positive duration")
	}

	database, err := openStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	purged, err := database.PurgeDetectionsBefore(time.Now().Add(-maxAge))
	if err != nil {
		return fmt.Errorf("failed to purge history: %w", err)
	}

	fmt.Printf("Purged %d detection(s) older than %s\n", purged, maxAge)
	return nil
}

// PrefsShowAction prints the stored preferences.
func PrefsShowAction(c *cli.Context) error {
	database, err := openStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	prefs, err := database.LoadPreferences()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// PrefsSetAction updates the stored preferences from flags. Flags that
// were not passed keep their stored values.
func PrefsSetAction(c *cli.Context) error {
	if !c.IsSet("auto-redirect") && !c.IsSet("threshold") && !c.IsSet("mirror-base") {
		return fmt.Errorf("nothing to set; pass --auto-redirect, --threshold, or --mirror-base")
	}

	database, err := openStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	prefs, err := database.LoadPreferences()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	if c.IsSet("auto-redirect") {
		prefs.AutoRedirect = c.Bool("auto-redirect")
	}
	if c.IsSet("threshold") {
		t := c.Int("threshold")
		if t < 0 {
			return fmt.Errorf("threshold must not be negative")
		}
		prefs.Threshold = t
	}
	if c.IsSet("mirror-base") {
		prefs.MirrorBase = strings.TrimSpace(c.String("mirror-base"))
	}

	if err := database.SavePreferences(prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
