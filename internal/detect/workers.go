package detect

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"mediumgate/models"
	"mediumgate/pkg/classifier"
	"mediumgate/pkg/db"
	"mediumgate/pkg/preview"
)

// runConfig carries the knobs for one batch run.
type runConfig struct {
	Workers     int
	Rate        float64
	WithPreview bool
}

// run classifies every URL concurrently and returns reports in input
// order. Probes go through a shared rate limiter; allowlist answers
// skip it because they never touch the network.
func run(ctx context.Context, logger *slog.Logger, engine *classifier.Engine, probe classifier.HeadFetcher, database *db.DB, urls []string, rc runConfig) []URLReport {
	workers := rc.Workers
	if workers < 1 {
		workers = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if rc.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(rc.Rate), workers)
	}

	logger.Info("starting detection run", "url_count", len(urls), "workers", workers, "rate", rc.Rate)

	reports := make([]URLReport, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rawURL := range urls {
		g.Go(func() error {
			host, _ := classifier.Hostname(rawURL)
			if !engine.Matcher().IsDirectMediumDomain(host) {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}

			result := engine.Classify(ctx, models.DetectRequest{URL: rawURL})
			report := URLReport{URL: rawURL, Result: result}
			if result.IsMediumLikely {
				report.Mirror = engine.MirrorURL(rawURL)
			}

			if rc.WithPreview && probe != nil {
				if res := probe.FetchHead(ctx, rawURL); res.OK && res.HeadHTML != "" {
					p := preview.Extract(res.HeadHTML)
					report.Preview = &p
				}
			}

			if database != nil {
				title := ""
				if report.Preview != nil {
					title = report.Preview.Title
				}
				_, err := database.RecordDetection(db.Detection{
					Host:     host,
					URL:      rawURL,
					IsMedium: result.IsMediumLikely,
					Score:    result.Score,
					Reasons:  result.Reasons,
					Source:   result.Source,
					Title:    title,
				})
				if err != nil {
					logger.Warn("failed to record detection", "url", rawURL, "error", err)
				}
			}

			reports[i] = report
			logger.Info("classified", "url", rawURL, "medium", result.IsMediumLikely, "score", result.Score, "source", result.Source)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("detection run interrupted", "error", err)
	}
	return reports
}
