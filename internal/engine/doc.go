// Package engine drives the external transcription worker over a persistent
// stdio channel.
//
// The worker is launched once and lives for the daemon's lifetime. Commands
// go to its stdin as one JSON object per line; status flows back on stdout
// the same way. The channel is duplex and asynchronous: the worker emits
// progress, analysis results, and terminal messages on its own schedule, so
// the Client never matches a response to a request. It decodes each complete
// stdout line and hands it to the Sink in arrival order; correlating a
// message with a job is the dispatcher's concern.
//
// Reads are chunk-based and go through LineAssembler, which buffers partial
// lines until their newline arrives. A message split across two pipe reads is
// delivered exactly once; stray non-JSON output on stdout is dropped without
// breaking the stream.
package engine
