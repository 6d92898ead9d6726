// Package tracker wires the arrest session to its collaborators and runs the
// full-screen terminal tracker: settings with hot reload, the archive store,
// the background archiver and the bubbletea program.
package tracker
