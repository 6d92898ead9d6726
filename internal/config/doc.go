// Package config defines the tracker settings and provides helpers to load,
// validate and save them in YAML format.
//
// Config carries the timer settings consumed by the arrest session, the
// logbook archive location and logging options. Live wraps a Config and
// reloads it when the file changes on disk.
package config
