// Package watchfolder feeds the queue from a drop directory. A filesystem
// watcher picks up newly created media files and enqueues them exactly as if
// the operator had run the add command, including queue-level dedupe.
package watchfolder
