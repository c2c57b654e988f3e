// Package queue holds the in-memory job queue the dispatcher drains.
//
// Jobs are ordered FIFO with manual reordering, keyed by an opaque ID, and
// indexed by source path so duplicate enqueues are cheap to detect. Queue
// state is deliberately not persisted: a daemon restart starts from an empty
// queue, and finished work is recorded separately in the history store.
//
// The Queue itself is not safe for concurrent use. The dispatcher owns it and
// serializes every access under its own lock; nothing else may touch it.
package queue
