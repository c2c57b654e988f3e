// Package daemon assembles the long-running v2s process: configuration,
// persisted settings, the in-memory queue, the event hub, the history
// store, the worker client and the dispatcher. It enforces one instance per
// host through a file lock and exposes the facade the IPC service calls.
//
// The daemon deliberately survives a dead worker process. Jobs cannot run
// without one, but the queue stays inspectable and an engine restart brings
// the system back without losing queued work.
package daemon
