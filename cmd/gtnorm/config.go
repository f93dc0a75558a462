package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type settingKind int

const (
	stringSetting settingKind = iota
	boolSetting
	intSetting
)

// setting is a configuration key gtnorm reads.
type setting struct {
	key   string
	kind  settingKind
	usage string
}

var settings = []setting{
	{"log.level", stringSetting, "debug, info, warn or error"},
	{"log.verbose", boolSetting, "force debug logging"},
	{"validate.max_errors", intSetting, "invalid records reported before aborting"},
	{"input.skip_preamble", boolSetting, "drop leading '#' comment lines before the header"},
	{"output.keep_partial", boolSetting, "keep partial output on failure"},
	{"history.enabled", boolSetting, "record runs in the history database"},
	{"history.path", stringSetting, "history database file"},
	{"history.store_genotypes", boolSetting, "store normalized records with each run"},
}

func lookupSetting(key string) (setting, bool) {
	key = strings.ToLower(key)
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

// parse converts a command-line value to the setting's type.
func (s setting) parse(value string) (any, error) {
	switch s.kind {
	case boolSetting:
		switch strings.ToLower(value) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", s.key, value)
		}
		return b, nil
	case intSetting:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s expects a positive integer, got %q", s.key, value)
		}
		return n, nil
	}
	if s.key == "log.level" {
		if _, err := zapcore.ParseLevel(value); err != nil {
			return nil, fmt.Errorf("%s: %w", s.key, err)
		}
	}
	return value, nil
}

func (a *app) newConfigCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gtnorm configuration",
		Long: `Show, get, or set configuration values. Settings are stored in
~/.gtnorm.yaml unless --config names another file. Environment variables
(GTNORM_VALIDATE_MAX_ERRORS, ...) and flags override stored values.`,
		Example: `  gtnorm config                              # show stored settings
  gtnorm config --effective                  # show every setting in force
  gtnorm config set input.skip_preamble true  # accept raw 23andMe downloads
  gtnorm config get validate.max_errors       # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if effective {
				return a.runConfigEffective()
			}
			return a.runConfigShow()
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "Show every setting with defaults, environment and flags applied")

	cmd.AddCommand(a.newConfigSetCmd())
	cmd.AddCommand(a.newConfigGetCmd())

	return cmd
}

func (a *app) newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSet(args[0], args[1])
		},
	}
}

func (a *app) newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value in force for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigGet(args[0])
		},
	}
}

// configPath is the file config commands read and write.
func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".gtnorm.yaml"), nil
}

// loadStored reads only what the config file holds, without defaults,
// environment or flags. A missing file yields an empty store.
func (a *app) loadStored() (*viper.Viper, string, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, "", err
	}

	stored := viper.New()
	stored.SetConfigFile(path)
	stored.SetConfigType("yaml")
	if err := stored.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading config: %w", err)
		}
	}
	return stored, path, nil
}

func (a *app) runConfigShow() error {
	stored, path, err := a.loadStored()
	if err != nil {
		return err
	}

	values := stored.AllSettings()
	if len(values) == 0 {
		fmt.Fprintf(a.stdout, "# No configuration set. Config file: %s\n", path)
		return nil
	}

	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprintf(a.stdout, "# %s\n%s", path, out)
	return nil
}

func (a *app) runConfigEffective() error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tDESCRIPTION")
	for _, s := range settings {
		fmt.Fprintf(tw, "%s\t%v\t%s\n", s.key, a.v.Get(s.key), s.usage)
	}
	return tw.Flush()
}

// runConfigSet stores a single key. Other stored keys are kept as they
// are; defaults and flag values are never written.
func (a *app) runConfigSet(key, value string) error {
	s, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	parsed, err := s.parse(value)
	if err != nil {
		return err
	}

	stored, path, err := a.loadStored()
	if err != nil {
		return err
	}
	stored.Set(s.key, parsed)

	if err := stored.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(a.stdout, "Set %s = %v in %s\n", s.key, parsed, path)
	return nil
}

func (a *app) runConfigGet(key string) error {
	s, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	fmt.Fprintln(a.stdout, a.v.Get(s.key))
	return nil
}
