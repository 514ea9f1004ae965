package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// NamedFlagSetOptions is implemented by the options struct of every command.
// The struct carries mapstructure tags matching the flag names so the same
// values can come from flags, a config file or the environment.
type NamedFlagSetOptions interface {
	// Flags returns the flags grouped by section.
	Flags() cliflag.NamedFlagSets

	// Complete fills in derived values after parsing.
	Complete() error

	// Validate checks the completed options.
	Validate() error
}
