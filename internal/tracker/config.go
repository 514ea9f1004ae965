package tracker

import (
	"fmt"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/internal/tracker/eeprom"
	"github.com/autopeer-io/seatrack/internal/tracker/gps"
	"github.com/autopeer-io/seatrack/internal/tracker/hal"
	"github.com/autopeer-io/seatrack/internal/tracker/modem"
	"github.com/autopeer-io/seatrack/internal/tracker/sensor"
	"github.com/autopeer-io/seatrack/internal/tracker/server"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
	"github.com/autopeer-io/seatrack/internal/tracker/telemetry"
	"github.com/autopeer-io/seatrack/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/seatrack/pkg/mqtt/topic"
	"github.com/autopeer-io/seatrack/pkg/options"
)

// Config is everything needed to assemble an Agent.
type Config struct {
	ModemOptions     *options.ModemOptions
	MqttOptions      *options.MqttOptions
	HttpOptions      *options.HttpOptions
	GpsOptions       *options.GpsOptions
	SensorOptions    *options.SensorOptions
	StoreOptions     *options.StoreOptions
	SchedulerOptions *options.SchedulerOptions
	UploadOptions    *options.UploadOptions
}

// NewAgent wires the host collaborators.
func (cfg *Config) NewAgent() (*Agent, error) {
	clk := clock.RealClock{}

	board := hal.New(hal.Config{
		ResetLine:  cfg.ModemOptions.ResetLine,
		ResetPulse: cfg.ModemOptions.ResetPulse,
	}, clk)

	dev, err := eeprom.OpenFile(cfg.StoreOptions.Path, cfg.StoreOptions.Size)
	if err != nil {
		return nil, fmt.Errorf("open config storage: %w", err)
	}

	var inbox *modem.Inbox
	if cfg.MqttOptions.Enable {
		inbox = modem.NewInbox(cfg.MqttOptions.InboxSize)
	}
	host := modem.NewHost(modem.Config{
		Interface:   cfg.ModemOptions.Interface,
		SignalFile:  cfg.ModemOptions.SignalFile,
		IMEI:        cfg.ModemOptions.IMEI,
		HTTPTimeout: cfg.ModemOptions.HTTPTimeout,
	}, board, inbox)

	c := components{
		clock:     clk,
		modem:     host,
		sensor:    sensor.NewIIO(cfg.SensorOptions.IIODevice),
		store:     store.New(dev, cfg.StoreOptions.Address),
		apn:       cfg.ModemOptions.APN,
		bootPause: cfg.ModemOptions.BootRetryPause,
		sched:     cfg.SchedulerOptions,
		upload: telemetry.Options{
			APN:         cfg.ModemOptions.APN,
			URL:         cfg.UploadOptions.URL,
			ContentType: cfg.UploadOptions.ContentType,
			SettlePause: cfg.UploadOptions.SettlePause,
		},
	}

	if cfg.GpsOptions.Enable {
		device, baud := cfg.GpsOptions.Device, cfg.GpsOptions.Baud
		c.openGPS = func() (core.GPS, error) {
			return gps.Open(device, baud)
		}
	}

	if cfg.MqttOptions.Enable {
		bridge, err := cfg.newBridge(host.IMEI(), inbox)
		if err != nil {
			return nil, err
		}
		c.services = append(c.services, bridge)
	}

	a := newAgent(c)

	if cfg.HttpOptions.Enable {
		a.services = append(a.services, server.NewServer(cfg.HttpOptions, a.Ready))
	}

	return a, nil
}

func (cfg *Config) newBridge(imei string, inbox *modem.Inbox) (*modem.Bridge, error) {
	if imei == "" {
		return nil, fmt.Errorf("sms bridge needs the device IMEI: set --modem.imei, %s or %s", hal.IMEIEnv, hal.IMEIFile)
	}

	topics := mqtttopic.NewBuilder(cfg.MqttOptions.TopicRoot)

	mqttConfig := cfg.MqttOptions.ToClientConfig()
	if mqttConfig.ClientID == "" {
		mqttConfig.ClientID = fmt.Sprintf("seatrack-%s", imei)
	}
	mqttConfig.WillTopic, mqttConfig.WillPayload = modem.Will(topics, imei)
	mqttConfig.WillQoS = 1
	mqttConfig.WillRetain = true

	client, err := mqtt.NewClient(mqttConfig)
	if err != nil {
		return nil, fmt.Errorf("init mqtt client: %w", err)
	}
	return modem.NewBridge(client, topics, imei, inbox), nil
}
