package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// withStore marks cmd as needing the open collections.
func withStore(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsStore] = "true"
	return cmd
}

// parseID parses a positive record id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, &types.ValidationError{Field: "id", Value: arg, Reason: "must be a positive integer"}
	}
	return id, nil
}
