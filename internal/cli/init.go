package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// configFile holds the structure init writes to config.yaml.
type configFile struct {
	DataDir        string `yaml:"data_dir,omitempty"`
	ContactsFile   string `yaml:"contacts_file"`
	NotesFile      string `yaml:"notes_file"`
	UndoDepth      int    `yaml:"undo_depth"`
	DeletePolicy   string `yaml:"delete_policy"`
	BirthdayWindow int    `yaml:"birthday_window"`
	LogLevel       string `yaml:"log_level"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize rolodex storage",
		Long: "Create the configuration and data directories, write config.yaml\n" +
			"when missing, and create empty contacts and notes files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg, err := a.loadConfig(false)
	if err != nil {
		return err
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), cfg, a.flags.dataDir); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if err := a.open(cfg, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	// Save writes both files, keeping whatever was already there.
	a.sess.markDirty()

	fmt.Fprintf(cmd.OutOrStdout(), "Rolodex initialized in %s\n", cfg.DataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. An explicit --data-dir is recorded so later runs find the data.
func writeConfigIfMissing(path string, cfg types.Config, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	out := configFile{
		ContactsFile:   cfg.ContactsFile,
		NotesFile:      cfg.NotesFile,
		UndoDepth:      cfg.UndoDepth,
		DeletePolicy:   cfg.DeletePolicy.String(),
		BirthdayWindow: cfg.BirthdayWindow,
		LogLevel:       cfg.LogLevel,
	}
	if dataDir != "" {
		out.DataDir = cfg.DataDir
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
