// Package flow holds the page flow of the interactive front-end as a pure
// state machine.
//
// Update takes the current State and a Msg and returns the next State and
// the Effects the shell must run (database lookups, domain resolution,
// clipboard, settings persistence). Effects report back through further
// messages such as MasterChecked and ResolutionDone. Nothing in this
// package performs I/O, so every transition is testable without a
// terminal.
package flow
