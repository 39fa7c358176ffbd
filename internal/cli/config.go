package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "ROLODEX"

	cfgKeyDataDir        = "data_dir"
	cfgKeyContactsFile   = "contacts_file"
	cfgKeyNotesFile      = "notes_file"
	cfgKeyUndoDepth      = "undo_depth"
	cfgKeyDeletePolicy   = "delete_policy"
	cfgKeyBirthdayWindow = "birthday_window"
	cfgKeyLogLevel       = "log_level"
)

// envKeys can be overridden with ROLODEX_<KEY>. data_dir is resolved
// separately so that config.yaml wins over ROLODEX_DATA_DIR.
var envKeys = []string{
	cfgKeyUndoDepth,
	cfgKeyDeletePolicy,
	cfgKeyBirthdayWindow,
	cfgKeyLogLevel,
}

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# rolodex configuration

# Data directory (optional; overridable by --data-dir).
# Relative paths are taken relative to this directory.
# data_dir:

# Collection files inside the data directory.
contacts_file: contacts.json
notes_file: notes.json

# Number of changes each collection can undo.
undo_depth: 10

# What happens to linked notes when a contact is deleted: detach or cascade.
delete_policy: detach

# Days ahead covered by "contact birthdays".
birthday_window: 7

# debug, info, warn or error.
log_level: warn
`

// loadConfig reads config.yaml from configDir with viper. With create set,
// the directory and a commented default file are written on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string, create bool) (*viper.Viper, error) {
	if create {
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure config dir: %w", err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return nil, fmt.Errorf("ensure default config: %w", err)
		}
	}

	v := viper.New()
	v.SetDefault(cfgKeyContactsFile, types.DefaultContactsFile)
	v.SetDefault(cfgKeyNotesFile, types.DefaultNotesFile)
	v.SetDefault(cfgKeyUndoDepth, types.DefaultUndoDepth)
	v.SetDefault(cfgKeyDeletePolicy, string(types.DeleteDetach))
	v.SetDefault(cfgKeyBirthdayWindow, types.DefaultBirthdayWindow)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig turns viper settings into a validated Config. The caller
// resolves DataDir.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DeletePolicy != "" {
		p, err := types.ParseDeletePolicy(string(cfg.DeletePolicy))
		if err != nil {
			return types.Config{}, fmt.Errorf("config %s: %w", cfgKeyDeletePolicy, err)
		}
		cfg.DeletePolicy = p
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile writes defaultConfigYAML when config.yaml does
// not exist yet.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
