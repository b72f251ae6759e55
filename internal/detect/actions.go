package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"mediumgate/internal/common"
	"mediumgate/models"
	"mediumgate/pkg/classifier"
	"mediumgate/pkg/db"
	"mediumgate/pkg/domains"
	"mediumgate/pkg/fetcher"
)

// DetectAction classifies a batch of URLs and prints a report.
func DetectAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	urls := c.Args().Slice()
	if c.IsSet("urls") {
		urls = append(urls, strings.Split(c.String("urls"), ",")...)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No URLs provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  mediumgate detect https://blog.example.com/post`)
		fmt.Fprintln(os.Stderr, `  mediumgate detect --urls "https://a.example/x,https://b.example/y"`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: mediumgate detect --help")
		os.Exit(1)
	}

	// Sanitize and validate all URLs before probing (fail fast)
	sanitized, invalid := common.SanitizeAndValidateURLs(urls)
	if len(invalid) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalid))
		for _, badURL := range invalid {
			fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Note: URLs are auto-cleaned (whitespace trimmed, trailing punctuation removed, markdown links extracted)")
		os.Exit(1)
	}

	if c.IsSet("threshold") {
		cfg.Detection.Threshold = c.Int("threshold")
	}

	engine := classifier.NewFromConfig(cfg, logger)

	// History recording is best effort; classification works without it.
	var database *db.DB
	if !c.Bool("no-record") {
		database, err = db.Open(cfg.Store.Path)
		if err != nil {
			logger.Warn("history store unavailable, results will not be recorded", "error", err)
		} else {
			defer database.Close()
		}
	}

	var probe classifier.HeadFetcher
	if c.Bool("preview") {
		probe = fetcher.NewFetcher(cfg.Fetch)
	}

	reports := run(context.Background(), logger, engine, probe, database, sanitized, runConfig{
		Workers:     c.Int("workers"),
		Rate:        c.Float64("rate"),
		WithPreview: c.Bool("preview"),
	})

	stats := Stats{
		TotalURLs:        len(sanitized),
		TotalTimeSeconds: time.Since(startTime).Seconds(),
	}
	for _, r := range reports {
		if r.Result.IsMediumLikely {
			stats.Medium++
		} else {
			stats.Other++
		}
	}

	finalOutput := FinalOutput{
		Status:  "success",
		Results: reports,
		Stats:   stats,
	}

	var outputData []byte
	var marshalErr error
	if strings.ToLower(c.String("format")) == "yaml" {
		outputData, marshalErr = yaml.Marshal(finalOutput)
	} else {
		outputData, marshalErr = json.MarshalIndent(finalOutput, "", "  ")
	}
	if marshalErr != nil {
		logger.Error("failed to marshal final output", "error", marshalErr)
		os.Exit(2)
	}
	fmt.Println(string(outputData))

	return nil
}

// DomainAction checks one hostname against the allowlist.
func DomainAction(c *cli.Context) error {
	hostname := strings.TrimSpace(c.Args().First())
	if hostname == "" {
		return fmt.Errorf("hostname argument is required")
	}

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	matcher := domains.NewMatcher(cfg.Detection.ExtraDomains...)
	outputData, err := json.MarshalIndent(map[string]any{
		"hostname":         hostname,
		"is_medium_domain": matcher.IsDirectMediumDomain(hostname),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(outputData))
	return nil
}

// MirrorAction prints the mirror URL for one post, nothing else, so
// the output can be piped straight into a browser or curl.
func MirrorAction(c *cli.Context) error {
	rawURL := c.Args().First()
	if rawURL == "" {
		return fmt.Errorf("url argument is required")
	}

	cleaned := common.SanitizeURL(rawURL)
	if err := common.ValidateProbeURL(cleaned); err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	base := cfg.Detection.MirrorBase
	if base == "" {
		base = models.DefaultMirrorBase
	}

	fmt.Println(classifier.ConvertToMirrorURL(base, cleaned))
	return nil
}
