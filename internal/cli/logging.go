package cli

import (
	"io"
	"log/slog"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// newLogger returns a text logger on w at the named level.
func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, types.ErrLogLevelUnknown
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
