// Package cli implements the rolodex command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/rolodex"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// needsStore marks commands that run against an open assistant.
const needsStore = "needs-store"

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// session is the open assistant shared by every command of one run. The
// shell keeps a single session across all of its lines.
type session struct {
	asst  *rolodex.Assistant
	cfg   types.Config
	log   *slog.Logger
	dirty bool
}

// markDirty records that the collections changed and need saving.
func (s *session) markDirty() { s.dirty = true }

// app is the state behind one command tree.
type app struct {
	flags   rootFlags
	sess    *session
	inShell bool
}

// NewRootCmd creates the top-level "rolodex" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rolodex",
		Short: "A personal assistant for contacts and notes",
		Long: "Rolodex keeps an address book and a notebook in two JSON files.\n" +
			"Notes can be linked to contacts; every change can be undone.",
		Version:           rolodex.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.postRun()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", a.flags.configDir, "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", a.flags.dataDir, "data directory (default: $(CWD)/.rolodex-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", a.flags.jsonMode, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newContactCmd(a))
	root.AddCommand(newNoteCmd(a))
	root.AddCommand(newExportCmd(a))
	if !a.inShell {
		root.AddCommand(newInitCmd(a))
		root.AddCommand(newShellCmd(a))
	}
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to a process exit code. Problems with the input
// are user errors; everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidPolicy),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// preRun opens the session for commands that need the collections. Inside
// the shell the session is already open.
func (a *app) preRun(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[needsStore] == "" || a.sess != nil {
		return nil
	}
	cfg, err := a.loadConfig(true)
	if err != nil {
		return err
	}
	return a.open(cfg, cmd.ErrOrStderr())
}

// open starts a session on cfg, logging to w.
func (a *app) open(cfg types.Config, w io.Writer) error {
	log, err := newLogger(cfg.LogLevel, w)
	if err != nil {
		return err
	}
	asst, err := rolodex.Open(cfg, rolodex.WithLogger(log))
	if err != nil {
		return err
	}
	a.sess = &session{asst: asst, cfg: asst.Config(), log: log}
	return nil
}

// postRun saves a one-shot session that changed something. Shell lines
// leave saving to the shell.
func (a *app) postRun() error {
	if a.inShell || a.sess == nil {
		return nil
	}
	return a.finish()
}

// finish saves when dirty and closes the session.
func (a *app) finish() error {
	s := a.sess
	var err error
	if s.dirty {
		err = s.asst.Save()
		if err == nil {
			s.dirty = false
		}
	}
	return errors.Join(err, s.asst.Close())
}

// loadConfig resolves directories and reads config.yaml into a Config.
func (a *app) loadConfig(create bool) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir, create)
	if err != nil {
		return types.Config{}, err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return types.Config{}, err
	}
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir), configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return cfg, nil
}
