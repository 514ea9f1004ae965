package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every seatrack collector. It is served on /metrics when the
// local HTTP endpoint is enabled.
var Registry = prometheus.NewRegistry()

var (
	// TaskRunsTotal counts scheduler task executions.
	TaskRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatrack_task_runs_total",
			Help: "Number of scheduler task executions.",
		},
		[]string{"task"}, // gps, sensors, sms, upload
	)

	// ResetRequestsTotal counts iterations short-circuited by a pending reset.
	ResetRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seatrack_reset_requests_total",
			Help: "Number of full device reset requests issued by the scheduler.",
		},
	)

	// CommandsTotal counts SMS commands by name and outcome.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatrack_commands_total",
			Help: "SMS commands handled, by command name and outcome.",
		},
		[]string{"command", "outcome"}, // outcome: accepted, rejected_sender, rejected_imei, unknown
	)

	// UploadsTotal counts telemetry cycles by result.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatrack_uploads_total",
			Help: "Telemetry upload cycles, by result.",
		},
		[]string{"result"}, // ok, connect_failed, post_failed
	)

	// UploadDuration records the duration of a whole connect/post/close cycle.
	UploadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seatrack_upload_duration_seconds",
			Help:    "Duration of telemetry upload cycles.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	// ConfigLoadsTotal counts settings loads by result.
	ConfigLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatrack_config_loads_total",
			Help: "Settings loads from persistent storage, by result.",
		},
		[]string{"result"}, // ok, checksum_mismatch, read_error
	)

	// SignalQuality is the last CSQ value (0-31, 99 unknown).
	SignalQuality = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "seatrack_signal_quality",
			Help: "Last cellular signal quality reported by the modem (CSQ).",
		},
	)

	// FixValid is 1 while an accepted GPS fix is held.
	FixValid = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "seatrack_gps_fix_valid",
			Help: "Whether an accepted GPS fix is held (1) or not (0).",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		TaskRunsTotal,
		ResetRequestsTotal,
		CommandsTotal,
		UploadsTotal,
		UploadDuration,
		ConfigLoadsTotal,
		SignalQuality,
		FixValid,
	)
}
