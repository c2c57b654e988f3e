// Package dispatch coordinates the job queue, the transcription worker and
// the status stream. A single controller mutex serializes user commands,
// worker messages and batch advancement, so the whole pipeline is one
// cooperative flow with no internal concurrency to reason about.
//
// The worker protocol does not tag progress, success or error messages with
// a job identifier. The controller keeps at most one job in the processing
// state and resolves those messages to it. That single in-flight slot is a
// protocol constraint, not an implementation shortcut; nothing here may
// submit a second transcription before the first reports a terminal status.
package dispatch
