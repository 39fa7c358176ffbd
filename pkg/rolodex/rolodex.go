// Package rolodex is the public entry point for embedding the contacts and
// notes assistant in other programs.
//
// Example:
//
//	a, err := rolodex.Open(types.Config{DataDir: ".rolodex-db"})
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	id, err := a.Contacts.Create(types.ContactPatch{Name: &name})
//	...
//	err = a.Save()
package rolodex

import (
	"github.com/mesh-intelligence/rolodex/internal/assistant"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

// Assistant owns the address book and notebook. See Open.
type Assistant = assistant.Assistant

// Option configures Open.
type Option = assistant.Option

// Options accepted by Open.
var (
	WithLogger = assistant.WithLogger
	WithClock  = assistant.WithClock
)

// Open loads both collections described by cfg. Missing or damaged files
// produce empty collections; see Assistant.LoadWarnings.
func Open(cfg types.Config, opts ...Option) (*Assistant, error) {
	return assistant.Open(cfg, opts...)
}
