package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	testclock "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/internal/tracker/eeprom"
	"github.com/autopeer-io/seatrack/internal/tracker/scheduler"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
	"github.com/autopeer-io/seatrack/internal/tracker/telemetry"
	"github.com/autopeer-io/seatrack/pkg/options"
)

const testIMEI = "356938035643809"

type fakeModem struct {
	connectFailures int
	connects        int
	posts           [][]byte
	closes          int
	fullResets      int
	softResets      int
	inbox           []core.Command
}

func (m *fakeModem) Connect(context.Context, string) error {
	m.connects++
	if m.connectFailures > 0 {
		m.connectFailures--
		return errors.New("no service")
	}
	return nil
}

func (m *fakeModem) IsConnected() bool { return true }

func (m *fakeModem) PostJSON(_ context.Context, _ string, body []byte, _ string) (core.Result, error) {
	m.posts = append(m.posts, body)
	return core.Result{StatusCode: 200}, nil
}

func (m *fakeModem) Close() error       { m.closes++; return nil }
func (m *fakeModem) SignalQuality() int { return 21 }
func (m *fakeModem) IMEI() string       { return testIMEI }
func (m *fakeModem) ResetSoft() error   { m.softResets++; return nil }
func (m *fakeModem) ResetFull() error   { m.fullResets++; return nil }

func (m *fakeModem) PollCommand() (core.Command, bool) {
	if len(m.inbox) == 0 {
		return core.Command{}, false
	}
	cmd := m.inbox[0]
	m.inbox = m.inbox[1:]
	return cmd, true
}

type fakeSensor struct {
	temp, humidity float64
}

func (s fakeSensor) ReadTemperature() float64 { return s.temp }
func (s fakeSensor) ReadHumidity() float64    { return s.humidity }
func (s fakeSensor) ComputeHeatIndex(t, h float64) float64 {
	return t + h/100
}

type fakeGPS struct {
	fix   core.Fix
	polls int
}

func (g *fakeGPS) Poll()         { g.polls++ }
func (g *fakeGPS) Fix() core.Fix { return g.fix }

type fixture struct {
	clock *testclock.FakeClock
	modem *fakeModem
	gps   *fakeGPS
	store *store.Store
	agent *Agent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock: testclock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		modem: &fakeModem{},
		gps: &fakeGPS{fix: core.Fix{
			Latitude: 59.91, Longitude: 10.75, Heading: 90, Speed: 4.2,
			Valid: core.ValidLocation | core.ValidHeading | core.ValidSpeed,
		}},
		store: store.New(eeprom.NewMemory(128), 0),
	}
	f.agent = newAgent(components{
		clock:     f.clock,
		modem:     f.modem,
		sensor:    fakeSensor{temp: 14, humidity: 50},
		store:     f.store,
		openGPS:   func() (core.GPS, error) { return f.gps, nil },
		apn:       "telenor",
		bootPause: time.Second,
		sched:     options.NewSchedulerOptions(),
		upload: telemetry.Options{
			APN:         "telenor",
			URL:         "https://example.invalid/ais",
			ContentType: "application/json",
			SettlePause: 50 * time.Millisecond,
		},
	})
	return f
}

func (f *fixture) boot(t *testing.T) {
	t.Helper()
	if err := f.agent.boot(context.Background()); err != nil {
		t.Fatalf("boot() error = %v", err)
	}
}

func TestBoot_RetriesUntilConnected(t *testing.T) {
	f := newFixture(t)
	f.modem.connectFailures = 2

	done := make(chan error, 1)
	go func() { done <- f.agent.boot(context.Background()) }()

	for steps := 0; steps < 2; {
		select {
		case err := <-done:
			t.Fatalf("boot() returned early: %v", err)
		default:
		}
		if f.clock.HasWaiters() {
			f.clock.Step(time.Second)
			steps++
		}
		time.Sleep(time.Millisecond)
	}

	if err := <-done; err != nil {
		t.Fatalf("boot() error = %v", err)
	}
	if f.modem.connects != 3 {
		t.Errorf("connects = %d, want 3", f.modem.connects)
	}
	if err := f.agent.Ready(); err != nil {
		t.Errorf("Ready() after boot = %v", err)
	}
	if f.agent.gps != f.gps {
		t.Error("GPS not started by boot")
	}
}

func TestBoot_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.modem.connectFailures = 1000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.agent.boot(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("boot() error = %v, want context.Canceled", err)
	}
	if err := f.agent.Ready(); err == nil {
		t.Error("Ready() before boot completed")
	}
}

func TestBoot_GPSUnavailable(t *testing.T) {
	f := newFixture(t)
	f.agent.openGPS = func() (core.GPS, error) { return nil, errors.New("no such device") }

	f.boot(t)

	f.agent.sampleGPS(context.Background())
	if f.agent.state.Fix.Valid != 0 {
		t.Errorf("fix = %+v, want none", f.agent.state.Fix)
	}
}

func TestTasks_SensorsAndGPS(t *testing.T) {
	f := newFixture(t)
	f.boot(t)
	start := f.clock.Now()

	f.agent.sampleGPS(context.Background())
	f.agent.sampleSensors(context.Background())

	if f.gps.polls != 1 || f.agent.state.Fix.Latitude != 59.91 {
		t.Errorf("gps polls = %d fix = %+v", f.gps.polls, f.agent.state.Fix)
	}
	want := core.Readings{Temperature: 14, Humidity: 50, HeatIndex: 14.5}
	if f.agent.state.Readings != want {
		t.Errorf("readings = %+v, want %+v", f.agent.state.Readings, want)
	}
	if f.agent.state.SignalQuality != 21 {
		t.Errorf("qos = %d, want 21", f.agent.state.SignalQuality)
	}
	if d := f.clock.Since(start); d != sensorSettle {
		t.Errorf("paused %v, want %v", d, sensorSettle)
	}
}

func TestTasks_SMSThenUpload(t *testing.T) {
	f := newFixture(t)
	f.boot(t)
	f.modem.inbox = []core.Command{
		{Sender: "+4799999999", Name: "mmsi", Value: "257123456"},
		{Sender: "+4799999999", Name: "callsign", Value: "LA1234"},
	}

	// One command per poll.
	f.agent.pollSMS(context.Background())
	if len(f.modem.inbox) != 1 {
		t.Fatalf("inbox = %d after one poll, want 1", len(f.modem.inbox))
	}
	f.agent.pollSMS(context.Background())

	f.clock.Step(90 * time.Second)
	f.agent.sampleGPS(context.Background())
	f.agent.upload(context.Background())

	if len(f.modem.posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(f.modem.posts))
	}
	var rec map[string]any
	if err := json.Unmarshal(f.modem.posts[0], &rec); err != nil {
		t.Fatal(err)
	}
	if rec["mmsi"] != "257123456" || rec["cs"] != "LA1234" || rec["lat"] != 59.91 {
		t.Errorf("record = %v", rec)
	}
	if rec["upt"] != float64(90000) {
		t.Errorf("upt = %v, want 90000", rec["upt"])
	}
	if f.agent.state.Config.Owner != "+4799999999" {
		t.Errorf("state config owner = %q", f.agent.state.Config.Owner)
	}
}

func TestTasks_UploadConnectFailureThenRecovery(t *testing.T) {
	f := newFixture(t)
	f.boot(t)
	f.modem.connectFailures = 1

	f.agent.upload(context.Background())
	if len(f.modem.posts) != 0 || f.modem.closes != 1 {
		t.Fatalf("posts = %d closes = %d, want 0 1", len(f.modem.posts), f.modem.closes)
	}

	f.agent.upload(context.Background())
	if len(f.modem.posts) != 1 || f.modem.closes != 2 {
		t.Errorf("posts = %d closes = %d, want 1 2", len(f.modem.posts), f.modem.closes)
	}
}

func TestTasks_NaNReadingsUploadAsNull(t *testing.T) {
	f := newFixture(t)
	f.agent.sensor = fakeSensor{temp: math.NaN(), humidity: math.NaN()}
	f.boot(t)

	f.agent.sampleSensors(context.Background())
	f.agent.upload(context.Background())

	var rec map[string]any
	if err := json.Unmarshal(f.modem.posts[0], &rec); err != nil {
		t.Fatalf("body %s: %v", f.modem.posts[0], err)
	}
	if v, ok := rec["tmp"]; !ok || v != nil {
		t.Errorf("tmp = %v, want null", v)
	}
}

func TestScheduler_ResetCommandShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.boot(t)
	if err := f.store.Save(store.Config{Owner: "+47A"}); err != nil {
		t.Fatal(err)
	}
	f.modem.inbox = []core.Command{{Sender: "+47A", Name: "reset"}}

	// Keep GPS out of the way so the lower priority tasks get their turn.
	f.agent.sched.GpsInterval = time.Hour
	s := scheduler.New(f.clock, f.modem, f.agent.state.PendingReset, f.agent.tasks()...)
	f.clock.Step(31 * time.Second)

	ctx := context.Background()
	var ran []string
	for i := 0; i < 4; i++ {
		if name, ok := s.Tick(ctx); ok {
			ran = append(ran, name)
		}
		if f.agent.state.PendingReset() {
			break
		}
	}
	if !f.agent.state.PendingReset() {
		t.Fatalf("reset not pending after %v", ran)
	}

	if name, ok := s.Tick(ctx); ok {
		t.Errorf("Tick ran %q with a reset pending", name)
	}
	if f.modem.fullResets != 1 {
		t.Errorf("full resets = %d, want 1", f.modem.fullResets)
	}
}

func TestState(t *testing.T) {
	boot := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := NewState(boot)

	if s.PendingReset() {
		t.Error("new state has a pending reset")
	}
	s.RequestReset()
	if !s.PendingReset() {
		t.Error("RequestReset did not raise the flag")
	}
	if got := s.Uptime(boot.Add(1500 * time.Millisecond)); got != 1500*time.Millisecond {
		t.Errorf("Uptime() = %v", got)
	}
}
