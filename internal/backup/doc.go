// Package backup exports the whole notes graph to a JSON document and imports
// it back.
//
// # Export
//
//	doc, err := backup.ExportFile(ctx, store, "notes-backup.json")
//	fmt.Printf("Exported %d notes as %s\n", len(doc.Notes), doc.ExportID)
//
// The file is replaced atomically, so a crash mid-export leaves the previous
// backup intact.
//
// # Import
//
//	imp := backup.NewImporter(store)
//	stats, err := imp.ImportFile(ctx, "notes-backup.json", &backup.Options{Workers: 4})
//
// Tags are written first in a single transaction, keeping their identities.
// Notes are then written concurrently, each through one composite write, so a
// note that fails is skipped whole and reported in Statistics.ErrorMessages
// while the rest of the import continues.
//
// Only one import runs per Importer at a time; a second call returns
// ErrImportInProgress.
package backup
