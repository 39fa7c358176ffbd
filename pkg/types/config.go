package types

import (
	"errors"
	"path/filepath"
)

// Config holds the data location and engine parameters used by
// assistant.Open. Zero values are replaced by WithDefaults.
type Config struct {
	DataDir        string       `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	ContactsFile   string       `json:"contacts_file" yaml:"contacts_file" mapstructure:"contacts_file"`
	NotesFile      string       `json:"notes_file" yaml:"notes_file" mapstructure:"notes_file"`
	UndoDepth      int          `json:"undo_depth" yaml:"undo_depth" mapstructure:"undo_depth"`
	DeletePolicy   DeletePolicy `json:"delete_policy" yaml:"delete_policy" mapstructure:"delete_policy"`
	BirthdayWindow int          `json:"birthday_window" yaml:"birthday_window" mapstructure:"birthday_window"`
	LogLevel       string       `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// Defaults applied by WithDefaults.
const (
	DefaultContactsFile   = "contacts.json"
	DefaultNotesFile      = "notes.json"
	DefaultUndoDepth      = 10
	DefaultBirthdayWindow = 7
	DefaultLogLevel       = "warn"
)

// Config validation errors.
var (
	ErrUndoDepthInvalid      = errors.New("undo depth must be positive")
	ErrBirthdayWindowInvalid = errors.New("birthday window must be positive")
	ErrFileNameEmpty         = errors.New("collection file name must not be empty")
	ErrFileNamesClash        = errors.New("contacts and notes files must differ")
	ErrLogLevelUnknown       = errors.New("unknown log level")
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.ContactsFile == "" {
		c.ContactsFile = DefaultContactsFile
	}
	if c.NotesFile == "" {
		c.NotesFile = DefaultNotesFile
	}
	if c.UndoDepth == 0 {
		c.UndoDepth = DefaultUndoDepth
	}
	if c.DeletePolicy == "" {
		c.DeletePolicy = DeleteDetach
	}
	if c.BirthdayWindow == 0 {
		c.BirthdayWindow = DefaultBirthdayWindow
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c
}

// Validate checks that the Config is well-formed and returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.ContactsFile == "" || c.NotesFile == "" {
		return ErrFileNameEmpty
	}
	if c.ContactsPath() == c.NotesPath() {
		return ErrFileNamesClash
	}
	if c.UndoDepth <= 0 {
		return ErrUndoDepthInvalid
	}
	if c.BirthdayWindow <= 0 {
		return ErrBirthdayWindowInvalid
	}
	if _, err := ParseDeletePolicy(string(c.DeletePolicy)); err != nil {
		return err
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}

// ContactsPath returns the contacts file location. Absolute file names are
// used as given; relative ones resolve against DataDir.
func (c Config) ContactsPath() string {
	return c.resolve(c.ContactsFile)
}

// NotesPath returns the notes file location.
func (c Config) NotesPath() string {
	return c.resolve(c.NotesFile)
}

func (c Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(c.DataDir, name)
}
