// Package arrest contains the core domain types of a resuscitation episode.
//
// It defines phases, events, checklists and archived logs, with Clone helpers
// so callers never share slices with the session that produced them.
package arrest
