// Package types defines the Record capability interface, the Contact and Note
// record kinds with their field patches and validators, configuration, and the
// standard error types for the rolodex record manager.
package types
