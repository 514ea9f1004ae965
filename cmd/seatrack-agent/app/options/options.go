package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/seatrack/internal/tracker"
	"github.com/autopeer-io/seatrack/pkg/app"
	"github.com/autopeer-io/seatrack/pkg/log"
	"github.com/autopeer-io/seatrack/pkg/options"
)

type AgentOptions struct {
	ModemOptions     *options.ModemOptions     `json:"modem" mapstructure:"modem"`
	MqttOptions      *options.MqttOptions      `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions      *options.HttpOptions      `json:"http" mapstructure:"http"`
	GpsOptions       *options.GpsOptions       `json:"gps" mapstructure:"gps"`
	SensorOptions    *options.SensorOptions    `json:"sensor" mapstructure:"sensor"`
	StoreOptions     *options.StoreOptions     `json:"store" mapstructure:"store"`
	SchedulerOptions *options.SchedulerOptions `json:"scheduler" mapstructure:"scheduler"`
	UploadOptions    *options.UploadOptions    `json:"upload" mapstructure:"upload"`
	Log              *log.Options              `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*AgentOptions)(nil)

func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		ModemOptions:     options.NewModemOptions(),
		MqttOptions:      options.NewMqttOptions(),
		HttpOptions:      options.NewHttpOptions(),
		GpsOptions:       options.NewGpsOptions(),
		SensorOptions:    options.NewSensorOptions(),
		StoreOptions:     options.NewStoreOptions(),
		SchedulerOptions: options.NewSchedulerOptions(),
		UploadOptions:    options.NewUploadOptions(),
		Log:              log.NewOptions(),
	}
}

func (o *AgentOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.ModemOptions.AddFlags(fss.FlagSet("modem"))
	o.UploadOptions.AddFlags(fss.FlagSet("upload"))
	o.SchedulerOptions.AddFlags(fss.FlagSet("scheduler"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	o.GpsOptions.AddFlags(fss.FlagSet("gps"))
	o.SensorOptions.AddFlags(fss.FlagSet("sensor"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *AgentOptions) Complete() error {
	return nil
}

func (o *AgentOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.ModemOptions.Validate()...)
	errs = append(errs, o.UploadOptions.Validate()...)
	errs = append(errs, o.SchedulerOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.GpsOptions.Validate()...)
	errs = append(errs, o.SensorOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *AgentOptions) Config() (*tracker.Config, error) {
	return &tracker.Config{
		ModemOptions:     o.ModemOptions,
		MqttOptions:      o.MqttOptions,
		HttpOptions:      o.HttpOptions,
		GpsOptions:       o.GpsOptions,
		SensorOptions:    o.SensorOptions,
		StoreOptions:     o.StoreOptions,
		SchedulerOptions: o.SchedulerOptions,
		UploadOptions:    o.UploadOptions,
	}, nil
}
