package config

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Row heights above this are clamped by spreadsheet applications
const maxRowHeight = 409

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Validate checks the configuration for values the report pipeline can't work with
func (c *Config) Validate() ValidationResults {
	var results ValidationResults

	if c.API.BaseURL == "" {
		results.Errors = append(results.Errors, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		results.Errors = append(results.Errors,
			fmt.Sprintf("api.base_url is not an absolute URL: %s", c.API.BaseURL))
	}

	if c.API.ImageURL == "" {
		results.Errors = append(results.Errors, "api.image_url is required")
	} else if !strings.Contains(c.API.ImageURL, "{id}") {
		results.Warnings = append(results.Warnings,
			"api.image_url has no {id} placeholder, every card will get the same image")
	}

	if c.API.Timeout.Duration < 0 {
		results.Errors = append(results.Errors, "api.timeout must not be negative")
	}

	if c.API.ImageRate < 0 {
		results.Errors = append(results.Errors, "api.image_rate must not be negative")
	} else if c.API.ImageRate == 0 {
		results.Warnings = append(results.Warnings, "api.image_rate is 0, image requests are not rate limited")
	}

	if c.Prices.Medium == "" {
		results.Errors = append(results.Errors, "prices.medium is required")
	}
	if c.Prices.Listing == "" {
		results.Errors = append(results.Errors, "prices.listing is required")
	}
	if len(c.Prices.Vendors) == 0 {
		results.Errors = append(results.Errors, "prices.vendors must list at least one vendor")
	}
	seen := make(map[string]bool)
	for _, vendor := range c.Prices.Vendors {
		if vendor == "" {
			results.Errors = append(results.Errors, "prices.vendors contains an empty vendor name")
			continue
		}
		if seen[vendor] {
			results.Warnings = append(results.Warnings,
				fmt.Sprintf("prices.vendors lists %s more than once", vendor))
		}
		seen[vendor] = true
	}

	if c.Report.RowHeight <= 0 {
		results.Errors = append(results.Errors, "report.row_height must be positive")
	} else if c.Report.RowHeight > maxRowHeight {
		results.Errors = append(results.Errors,
			fmt.Sprintf("report.row_height must be at most %d", maxRowHeight))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		results.Errors = append(results.Errors, fmt.Sprintf("log.level: %v", err))
	}

	return results
}
