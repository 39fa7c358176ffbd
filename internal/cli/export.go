package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/internal/sqlite"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a SQLite snapshot of contacts and notes",
		Long: `Export writes both collections to a fresh SQLite database for ad hoc
queries. The JSON files remain the source of truth.

Example:
  rolodex export
  rolodex export --out /tmp/rolodex.db
  sqlite3 .rolodex-db/rolodex.db 'SELECT name FROM contacts'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := out
			if path == "" {
				path = paths.ExportFile(a.sess.cfg.DataDir)
			}
			path, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			sum, err := sqlite.Export(cmd.Context(), path,
				a.sess.asst.Contacts.All(), a.sess.asst.Notes.All(), a.sess.asst.Now())
			if err != nil {
				return err
			}
			a.sess.log.Info("snapshot exported", "path", sum.Path, "export_id", sum.ExportID)
			return a.printer(cmd).done(sum, "Exported %d contact(s) and %d note(s) to %s",
				sum.Contacts, sum.Notes, sum.Path)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "database file (default: <data-dir>/rolodex.db)")
	return withStore(cmd)
}
