// Package archive persists finalized arrest logs for the logbook.
//
// Two stores implement Repository: SQLiteRepository (the default, backed by
// modernc.org/sqlite) and FileRepository, which keeps every log in a single
// JSON document. Open picks one from the archive configuration.
package archive
