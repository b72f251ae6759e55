package detect

import (
	"mediumgate/models"
	"mediumgate/pkg/preview"
)

// URLReport is the per-URL block of the final output.
type URLReport struct {
	URL     string                 `json:"url" yaml:"url"`
	Result  models.DetectionResult `json:"result" yaml:"result"`
	Mirror  string                 `json:"mirror_url,omitempty" yaml:"mirror_url,omitempty"`
	Preview *preview.Preview       `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// Stats summarizes one detect run.
type Stats struct {
	TotalURLs        int     `json:"total_urls" yaml:"total_urls"`
	Medium           int     `json:"medium" yaml:"medium"`
	Other            int     `json:"other" yaml:"other"`
	TotalTimeSeconds float64 `json:"total_time_seconds" yaml:"total_time_seconds"`
}

// FinalOutput is the document printed to stdout.
type FinalOutput struct {
	Status  string      `json:"status" yaml:"status"`
	Results []URLReport `json:"results" yaml:"results"`
	Stats   Stats       `json:"stats" yaml:"stats"`
}
