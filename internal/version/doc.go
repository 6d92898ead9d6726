// Package version exposes build metadata of the eresus binary.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
package version
