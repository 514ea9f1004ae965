package options

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*UploadOptions)(nil)

// UploadOptions configures the telemetry endpoint.
type UploadOptions struct {
	URL         string        `json:"url" mapstructure:"url"`
	ContentType string        `json:"content-type" mapstructure:"content-type"`
	SettlePause time.Duration `json:"settle-pause" mapstructure:"settle-pause"`
}

// NewUploadOptions creates an UploadOptions object with default parameters.
func NewUploadOptions() *UploadOptions {
	return &UploadOptions{
		URL:         "https://bogenhuset.no/nodered/ais/blackpearl",
		ContentType: "application/json",
		SettlePause: 50 * time.Millisecond,
	}
}

// Validate checks the endpoint URL.
func (o *UploadOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	u, err := url.Parse(o.URL)
	if err != nil {
		errors = append(errors, fmt.Errorf("upload.url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Errorf("upload.url must be http or https, got %q", o.URL))
	}
	if o.ContentType == "" {
		errors = append(errors, fmt.Errorf("upload.content-type must not be empty"))
	}

	return errors
}

// AddFlags adds flags for UploadOptions to the specified FlagSet.
func (o *UploadOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.URL, "upload.url", o.URL, "Telemetry endpoint.")
	fs.StringVar(&o.ContentType, "upload.content-type", o.ContentType, "Content type of the telemetry POST.")
	fs.DurationVar(&o.SettlePause, "upload.settle-pause", o.SettlePause, "Pause between bearer connect, POST and close.")
}
