// Package archiver stores finalized arrest sessions in the background.
//
// The session hands a log to Service.Archive, which never blocks and never
// reports failures back; a single worker goroutine persists logs through an
// archive.Repository and logs any error.
package archiver
