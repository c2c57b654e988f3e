// Package events buffers queue and engine status updates for streaming
// consumers. The daemon publishes one Update per observable change; clients
// poll with a cursor and can block until something new arrives. The buffer
// is a bounded ring, so a slow client that falls behind sees the sequence
// gap and resynchronizes from a fresh snapshot.
package events
