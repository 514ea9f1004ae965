package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/autopeer-io/seatrack/pkg/log"
)

const configFlagName = "config"

var cfgFile string

// addConfigFlag registers --config and arranges for viper to read the file,
// and the environment under envPrefix, before the command runs.
func addConfigFlag(basename string, fs *pflag.FlagSet) {
	fs.StringVarP(&cfgFile, configFlagName, "c", cfgFile,
		"Read configuration from the specified file. Flags given on the command line take precedence.")

	bindEnv(viper.GetViper(), basename)
}

// bindEnv maps keys like store.path to BASENAME_STORE_PATH.
func bindEnv(v *viper.Viper, basename string) {
	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(basename, "-", "_")))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// loadConfig reads the config file, if any, into the global viper.
func loadConfig(basename string) error {
	return readConfig(viper.GetViper(), basename, cfgFile)
}

// readConfig reads file into v, or searches the default locations when file
// is empty. An explicit file must exist; the default locations are optional.
func readConfig(v *viper.Viper, basename, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+basename))
		}
		v.AddConfigPath(filepath.Join("/etc", basename))
		v.SetConfigName(basename)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file %q: %w", file, err)
	}
	return nil
}

// SubcommandConfig gives a subcommand the application's configuration: the
// same --config file lookup and environment prefix as the main command, with
// the subcommand's own flags taking precedence when set.
type SubcommandConfig struct {
	basename string
	file     string
}

// NewSubcommandConfig returns a SubcommandConfig for the application basename.
func NewSubcommandConfig(basename string) *SubcommandConfig {
	return &SubcommandConfig{basename: basename}
}

// AddFlags registers --config on fs.
func (c *SubcommandConfig) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.file, configFlagName, "c", c.file,
		"Read configuration from the specified file. Flags given on the command line take precedence.")
}

// Decode layers the config file and the environment under the flags in fs
// and decodes the result into target, whose mapstructure tags select the
// sections it needs.
func (c *SubcommandConfig) Decode(fs *pflag.FlagSet, target any) error {
	v := viper.New()
	bindEnv(v, c.basename)
	if err := readConfig(v, c.basename, c.file); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}

// watchConfig logs edits of the config file. Options are read once at start;
// a change takes effect on the next restart.
func watchConfig() {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		log.Info("Config file changed, restart to apply", "file", e.Name)
	})
	viper.WatchConfig()
}
