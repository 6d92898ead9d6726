// Package tracker is the full-screen terminal front-end of the arrest
// session. It renders session.View snapshots and maps key presses to session
// commands, redrawing whenever the session signals a change.
package tracker
