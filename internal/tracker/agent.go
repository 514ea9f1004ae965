package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/seatrack/internal/tracker/command"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/internal/tracker/scheduler"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
	"github.com/autopeer-io/seatrack/internal/tracker/telemetry"
	"github.com/autopeer-io/seatrack/pkg/log"
	"github.com/autopeer-io/seatrack/pkg/options"
)

// Task names, in priority order.
const (
	TaskGPS     = "gps"
	TaskSensors = "sensors"
	TaskSMS     = "sms"
	TaskUpload  = "upload"
)

// sensorSettle separates the signal quality query from the sensor reads.
const sensorSettle = 100 * time.Millisecond

// service runs beside the scheduler until ctx is done.
type service interface {
	Start(ctx context.Context) error
}

// components are the collaborators an Agent is assembled from.
type components struct {
	clock  clock.Clock
	modem  core.Modem
	sensor core.EnvSensor
	store  *store.Store
	// openGPS is called once the bearer is up.
	openGPS func() (core.GPS, error)
	// services may be empty.
	services []service

	apn       string
	bootPause time.Duration
	sched     *options.SchedulerOptions
	upload    telemetry.Options
}

type Agent struct {
	components

	state      *State
	gps        core.GPS
	dispatcher *command.Dispatcher
	uploader   *telemetry.Uploader

	booted atomic.Bool
	log    log.Logger
}

func newAgent(c components) *Agent {
	a := &Agent{
		components: c,
		state:      NewState(c.clock.Now()),
		gps:        noGPS{},
		log:        log.WithName("agent"),
	}
	a.dispatcher = command.NewDispatcher(c.store, c.modem.IMEI, c.modem, a.state, c.clock, c.sched.CommandPause)
	a.uploader = telemetry.NewUploader(c.modem, c.clock, c.upload)
	return a
}

// Run boots the tracker and then runs the scheduler until ctx is done. The
// auxiliary services start immediately.
func (a *Agent) Run(ctx context.Context) error {
	a.log.Info("Starting seatrack-agent")

	g, ctx := errgroup.WithContext(ctx)

	for _, s := range a.services {
		s := s
		g.Go(func() error {
			return s.Start(ctx)
		})
	}

	g.Go(func() error {
		if err := a.boot(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		s := scheduler.New(a.clock, a.modem, a.state.PendingReset, a.tasks()...)
		return s.Run(ctx, a.sched.IdlePause)
	})

	err := g.Wait()
	a.log.Info("Agent shutting down")
	if c, ok := a.gps.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	return err
}

// Ready reports whether the boot sequence has completed.
func (a *Agent) Ready() error {
	if !a.booted.Load() {
		return errors.New("booting")
	}
	return nil
}

// boot brings the bearer up, retrying until it succeeds, then loads the
// settings and starts the GPS.
func (a *Agent) boot(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := a.modem.Connect(ctx, a.apn)
		if err == nil {
			break
		}
		a.log.Warn("Bearer not up, retrying", "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.clock.After(a.bootPause):
		}
	}
	a.log.Info("Bearer connected", "apn", a.apn)

	a.log.Info("Device identity", "imei", a.modem.IMEI())

	a.state.Config = a.store.Load()
	a.logConfig("Config loaded")

	if a.openGPS != nil {
		g, err := a.openGPS()
		if err != nil {
			a.log.Error(err, "GPS unavailable, uploading without position")
		} else {
			a.gps = g
		}
	}

	a.booted.Store(true)
	return nil
}

func (a *Agent) tasks() []scheduler.Task {
	return []scheduler.Task{
		{Name: TaskGPS, Interval: a.sched.GpsInterval, Run: a.sampleGPS},
		{Name: TaskSensors, Interval: a.sched.SensorInterval, Run: a.sampleSensors},
		{Name: TaskSMS, Interval: a.sched.SmsInterval, Run: a.pollSMS},
		{Name: TaskUpload, Interval: a.sched.UploadInterval, Run: a.upload},
	}
}

func (a *Agent) sampleGPS(context.Context) {
	a.gps.Poll()
	a.state.Fix = a.gps.Fix()
}

func (a *Agent) sampleSensors(context.Context) {
	a.state.SignalQuality = a.modem.SignalQuality()
	a.clock.Sleep(sensorSettle)

	t := a.sensor.ReadTemperature()
	h := a.sensor.ReadHumidity()
	a.state.Readings = core.Readings{
		Temperature: t,
		Humidity:    h,
		HeatIndex:   a.sensor.ComputeHeatIndex(t, h),
	}
	a.log.Debug("Sensors sampled", "qos", a.state.SignalQuality,
		"temperature", t, "humidity", h, "heatIndex", a.state.Readings.HeatIndex)
}

// pollSMS handles at most one command per run.
func (a *Agent) pollSMS(ctx context.Context) {
	cmd, ok := a.modem.PollCommand()
	if !ok {
		return
	}
	outcome, err := a.dispatcher.Handle(ctx, cmd)
	if err != nil {
		a.log.Error(err, "Command handling failed", "command", cmd.Name)
	}
	a.log.Debug("Command handled", "command", cmd.Name, "outcome", outcome)
}

func (a *Agent) upload(ctx context.Context) {
	a.state.Config = a.store.Load()
	a.logConfig("Uploading telemetry")

	// Failures are logged and counted by the uploader; the next cycle is
	// independent.
	_ = a.uploader.AssembleAndSend(ctx, telemetry.Inputs{
		Config:        a.state.Config,
		Readings:      a.state.Readings,
		Fix:           a.state.Fix,
		SignalQuality: a.state.SignalQuality,
		Uptime:        a.state.Uptime(a.clock.Now()),
	})
}

func (a *Agent) logConfig(msg string) {
	c := a.state.Config
	a.log.Info(msg, "owner", c.Owner, "mmsi", c.MMSI, "callsign", c.Callsign, "shipname", c.Shipname)
}

// noGPS stands in until a receiver is opened: it never has a fix.
type noGPS struct{}

func (noGPS) Poll()         {}
func (noGPS) Fix() core.Fix { return core.Fix{} }
