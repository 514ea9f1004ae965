package options

import (
	"strings"
	"testing"
)

func TestAgentOptions_Defaults(t *testing.T) {
	o := NewAgentOptions()

	if err := o.Validate(); err != nil {
		t.Fatalf("Validate() on defaults = %v", err)
	}

	cfg, err := o.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.ModemOptions.APN != "telenor" || cfg.UploadOptions.ContentType != "application/json" {
		t.Errorf("config = %+v %+v", cfg.ModemOptions, cfg.UploadOptions)
	}
}

func TestAgentOptions_ValidateAggregates(t *testing.T) {
	o := NewAgentOptions()
	o.ModemOptions.APN = ""
	o.StoreOptions.Size = 8
	o.Log.Format = "xml"

	err := o.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, want := range []string{"modem.apn", "store.size", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, missing %s", err, want)
		}
	}
}

func TestAgentOptions_Flags(t *testing.T) {
	fss := NewAgentOptions().Flags()

	for _, name := range []string{"modem", "upload", "scheduler", "store", "gps", "sensor", "mqtt", "http", "log"} {
		if _, ok := fss.FlagSets[name]; !ok {
			t.Errorf("flag set %q missing", name)
		}
	}
	if f := fss.FlagSet("scheduler").Lookup("scheduler.gps-interval"); f == nil || f.DefValue != "50ms" {
		t.Errorf("scheduler.gps-interval = %+v", f)
	}
}
