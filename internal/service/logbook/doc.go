// Package logbook browses archived arrest logs: listing, exporting the event
// summary of one log and deleting logs.
package logbook
