package sources

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Settings is the typed view of a source's settings map. Fields left
// out of the map keep their zero value except StartPage, which
// defaults to 1.
type Settings struct {
	// MaxPages caps pagination; 0 means no cap.
	MaxPages int `mapstructure:"max_pages"`
	// MinNewJobsPerPage is the early-stop threshold.
	MinNewJobsPerPage int `mapstructure:"min_new_jobs_per_page"`
	// SleepBetweenJobs is the pause in seconds between item downloads.
	SleepBetweenJobs int `mapstructure:"sleep_between_jobs"`
	// StartPage is the first page number for URL pagination.
	StartPage int `mapstructure:"start_page"`
	// URLPattern is the URL template for URL pagination. It may
	// reference {base_url} and {page_num}.
	URLPattern string `mapstructure:"url_pattern"`
	// BaseURL prefixes relative next-page links.
	BaseURL string `mapstructure:"base_url"`
	// HandleCookies enables cookie consent dismissal during setup.
	HandleCookies bool `mapstructure:"handle_cookies"`
	// WaitBetweenPagesMin is the lower bound in seconds of the
	// randomized inter-page wait.
	WaitBetweenPagesMin float64 `mapstructure:"wait_between_pages_min"`
	// WaitBetweenPagesMax is the upper bound in seconds of the
	// randomized inter-page wait.
	WaitBetweenPagesMax float64 `mapstructure:"wait_between_pages_max"`
}

// DecodeSettings decodes the source's settings map into its typed
// form. Numeric values may arrive as strings from YAML anchors, so
// decoding is weakly typed.
func (s *Source) DecodeSettings() (*Settings, error) {
	settings := Settings{
		StartPage: 1,
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build settings decoder: %w", err)
	}

	if err := decoder.Decode(s.Settings); err != nil {
		return nil, fmt.Errorf("invalid settings for source %s: %w", s.Name, err)
	}

	if settings.StartPage < 1 {
		settings.StartPage = 1
	}
	if settings.MinNewJobsPerPage < 0 {
		settings.MinNewJobsPerPage = 0
	}

	return &settings, nil
}
