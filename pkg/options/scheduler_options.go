package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SchedulerOptions)(nil)

// SchedulerOptions holds the task intervals. Tasks are always evaluated in
// the order gps, sensors, sms, upload regardless of their intervals.
type SchedulerOptions struct {
	GpsInterval    time.Duration `json:"gps-interval" mapstructure:"gps-interval"`
	SensorInterval time.Duration `json:"sensor-interval" mapstructure:"sensor-interval"`
	SmsInterval    time.Duration `json:"sms-interval" mapstructure:"sms-interval"`
	UploadInterval time.Duration `json:"upload-interval" mapstructure:"upload-interval"`

	// IdlePause is slept after an iteration in which no task ran.
	IdlePause time.Duration `json:"idle-pause" mapstructure:"idle-pause"`

	// CommandPause is the pause taken before executing a reset command.
	CommandPause time.Duration `json:"command-pause" mapstructure:"command-pause"`
}

// NewSchedulerOptions creates a SchedulerOptions object with default parameters.
func NewSchedulerOptions() *SchedulerOptions {
	return &SchedulerOptions{
		GpsInterval:    50 * time.Millisecond,
		SensorInterval: 5 * time.Second,
		SmsInterval:    30 * time.Second,
		UploadInterval: 15 * time.Second,
		IdlePause:      5 * time.Millisecond,
		CommandPause:   time.Second,
	}
}

// Validate checks that every interval is positive.
func (o *SchedulerOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	for name, d := range map[string]time.Duration{
		"scheduler.gps-interval":    o.GpsInterval,
		"scheduler.sensor-interval": o.SensorInterval,
		"scheduler.sms-interval":    o.SmsInterval,
		"scheduler.upload-interval": o.UploadInterval,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Errorf("%s must be > 0", name))
		}
	}
	if o.IdlePause < 0 || o.CommandPause < 0 {
		errors = append(errors, fmt.Errorf("scheduler pauses must be >= 0"))
	}

	return errors
}

// AddFlags adds flags for SchedulerOptions to the specified FlagSet.
func (o *SchedulerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.GpsInterval, "scheduler.gps-interval", o.GpsInterval, "Interval of the GPS sample task.")
	fs.DurationVar(&o.SensorInterval, "scheduler.sensor-interval", o.SensorInterval, "Interval of the sensor and signal sample task.")
	fs.DurationVar(&o.SmsInterval, "scheduler.sms-interval", o.SmsInterval, "Interval of the SMS poll task.")
	fs.DurationVar(&o.UploadInterval, "scheduler.upload-interval", o.UploadInterval, "Interval of the telemetry upload task.")
	fs.DurationVar(&o.IdlePause, "scheduler.idle-pause", o.IdlePause, "Pause after an iteration in which no task ran.")
	fs.DurationVar(&o.CommandPause, "scheduler.command-pause", o.CommandPause, "Pause before executing reset commands.")
}
