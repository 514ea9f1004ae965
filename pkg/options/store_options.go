package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/seatrack/internal/tracker/store"
)

var _ IOptions = (*StoreOptions)(nil)

// StoreOptions configures the emulated EEPROM holding the persisted settings.
type StoreOptions struct {
	// Path of the EEPROM image file.
	Path string `json:"path" mapstructure:"path"`

	// Size of the EEPROM image in bytes.
	Size int `json:"size" mapstructure:"size"`

	// Address of the settings record inside the image.
	Address int `json:"address" mapstructure:"address"`
}

// NewStoreOptions creates a StoreOptions object with default parameters.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Path:    "/var/lib/seatrack/eeprom.bin",
		Size:    1024,
		Address: 0,
	}
}

// Validate checks that the record fits in the image.
func (o *StoreOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.Path == "" {
		errors = append(errors, fmt.Errorf("store.path must not be empty"))
	}
	if o.Address < 0 {
		errors = append(errors, fmt.Errorf("store.address must be >= 0"))
	}
	if o.Address+store.RecordSize > o.Size {
		errors = append(errors, fmt.Errorf("store.size %d cannot hold the settings record at address %d", o.Size, o.Address))
	}

	return errors
}

// AddFlags adds flags for StoreOptions to the specified FlagSet.
func (o *StoreOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Path, "store.path", o.Path, "Path of the EEPROM image file.")
	fs.IntVar(&o.Size, "store.size", o.Size, "Size of the EEPROM image in bytes.")
	fs.IntVar(&o.Address, "store.address", o.Address, "Address of the settings record inside the image.")
}
