// Package session implements the arrest session state machine.
//
// A Session owns the phase, counters, timers, checklists and event log of one
// resuscitation episode. Every mutating command records an undo snapshot
// first, so Undo can rewind an arbitrary sequence of actions. A 1 Hz ticker
// recomputes the elapsed time and the CPR cycle countdown while the arrest
// is active or in ROSC.
//
// Invalid input (a non-numeric ETCO2, an empty drug name, a command that does
// not fit the current phase) is dropped without changing state, so a stray
// keystroke never blocks the workflow.
package session
