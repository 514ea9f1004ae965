package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autopeer-io/seatrack/internal/tracker/eeprom"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
	"github.com/autopeer-io/seatrack/pkg/app"
	"github.com/autopeer-io/seatrack/pkg/options"
)

type inspectOptions struct {
	Store *options.StoreOptions `json:"store" mapstructure:"store"`

	config *app.SubcommandConfig
	output string
}

func newInspectCommand() *cobra.Command {
	o := &inspectOptions{
		Store:  options.NewStoreOptions(),
		config: app.NewSubcommandConfig(commandName),
		output: "table",
	}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode the settings stored in an EEPROM image",
		Long: `Decode the settings record of an EEPROM image and verify its checksum.
The image is only read; an invalid record is shown as found. The image
location comes from the agent's config file and environment unless given
with --store.* flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.config.Decode(cmd.Flags(), o); err != nil {
				return err
			}
			return o.run(cmd.OutOrStdout())
		},
	}

	o.config.AddFlags(cmd.Flags())
	o.Store.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&o.output, "output", "o", o.output, "Output format: table, yaml or json.")
	return cmd
}

func (o *inspectOptions) run(w io.Writer) error {
	if errs := o.Store.Validate(); len(errs) > 0 {
		return errs[0]
	}

	dev, err := eeprom.OpenFile(o.Store.Path, o.Store.Size)
	if err != nil {
		return err
	}
	in, err := store.New(dev, o.Store.Address).Inspect()
	if err != nil {
		return err
	}

	switch o.output {
	case "table":
		return printTable(w, o.Store.Path, in)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(in)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

func printTable(w io.Writer, path string, in store.Inspection) error {
	status := "valid"
	if !in.Valid {
		status = "INVALID (defaults in use)"
	}

	t := uitable.New()
	t.MaxColWidth = 60
	t.AddRow("IMAGE:", path)
	t.AddRow("STATUS:", status)
	t.AddRow("OWNER:", in.Config.Owner)
	t.AddRow("MMSI:", in.Config.MMSI)
	t.AddRow("SHIPNAME:", in.Config.Shipname)
	t.AddRow("CALLSIGN:", in.Config.Callsign)
	t.AddRow("CHECKSUM:", fmt.Sprintf("stored 0x%08x, computed 0x%08x", in.Stored, in.Computed))

	_, err := fmt.Fprintln(w, t)
	return err
}
