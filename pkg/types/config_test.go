package types

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{DataDir: "/tmp/data"}.WithDefaults()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero undo depth", mutate: func(c *Config) { c.UndoDepth = 0 }, wantErr: ErrUndoDepthInvalid},
		{name: "negative undo depth", mutate: func(c *Config) { c.UndoDepth = -1 }, wantErr: ErrUndoDepthInvalid},
		{name: "zero birthday window", mutate: func(c *Config) { c.BirthdayWindow = 0 }, wantErr: ErrBirthdayWindowInvalid},
		{name: "empty contacts file", mutate: func(c *Config) { c.ContactsFile = "" }, wantErr: ErrFileNameEmpty},
		{name: "same file for both", mutate: func(c *Config) { c.NotesFile = c.ContactsFile }, wantErr: ErrFileNamesClash},
		{name: "unknown policy", mutate: func(c *Config) { c.DeletePolicy = "orphan" }, wantErr: ErrInvalidPolicy},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: ErrLogLevelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()

	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, DefaultContactsFile, cfg.ContactsFile)
	assert.Equal(t, DefaultNotesFile, cfg.NotesFile)
	assert.Equal(t, DefaultUndoDepth, cfg.UndoDepth)
	assert.Equal(t, DeleteDetach, cfg.DeletePolicy)
	assert.Equal(t, DefaultBirthdayWindow, cfg.BirthdayWindow)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)

	kept := Config{UndoDepth: 3, DeletePolicy: DeleteCascade}.WithDefaults()
	assert.Equal(t, 3, kept.UndoDepth)
	assert.Equal(t, DeleteCascade, kept.DeletePolicy)
}

func TestConfigPaths(t *testing.T) {
	cfg := Config{DataDir: "/var/rolodex"}.WithDefaults()
	assert.Equal(t, filepath.Join("/var/rolodex", "contacts.json"), cfg.ContactsPath())
	assert.Equal(t, filepath.Join("/var/rolodex", "notes.json"), cfg.NotesPath())

	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	cfg.NotesFile = abs
	assert.Equal(t, abs, cfg.NotesPath())
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ParseDeletePolicy("Cascade")
	require.NoError(t, err)
	assert.Equal(t, DeleteCascade, p)

	p, err = ParseDeletePolicy(" detach ")
	require.NoError(t, err)
	assert.Equal(t, DeleteDetach, p)

	_, err = ParseDeletePolicy("keep")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}
