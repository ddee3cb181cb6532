package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thoughtpad/thoughtpad-mcp/internal/backup"
)

var keepIDs bool

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write every tag and note to a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := backup.ExportFile(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		logger.Info("export complete",
			zap.String("path", args[0]),
			zap.String("export_id", doc.ExportID),
			zap.Int("tags", len(doc.Tags)),
			zap.Int("notes", len(doc.Notes)))
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes and %d tags to %s\n", len(doc.Notes), len(doc.Tags), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore tags and notes from a JSON backup",
	Long: `Import reads a backup written by export. Tags keep their identities. Notes
get fresh identities unless --keep-ids is given, in which case a note with the
same identity is replaced. A note that fails to import is skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stats, err := backup.NewImporter(store).ImportFile(ctx, args[0], &backup.Options{
			Workers: cfg.Workers,
			KeepIDs: keepIDs,
		})
		if err != nil {
			return err
		}

		for _, msg := range stats.ErrorMessages {
			logger.Warn("note skipped", zap.String("reason", msg))
		}
		logger.Info("import complete",
			zap.Int("tags", stats.TagsImported),
			zap.Int("notes", stats.NotesImported),
			zap.Int("failed", stats.NotesFailed),
			zap.Duration("duration", stats.Duration))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes (%d failed) and %d tags\n",
			stats.NotesImported, stats.NotesFailed, stats.TagsImported)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&keepIDs, "keep-ids", false, "restore notes under their exported identities")
}
