// Package api defines wire-format types and converters for the IPC layer.
// It translates internal queue, history, and settings models into
// transport-friendly DTOs so clients never couple to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status, queue.Kind)
// are exposed as lowercase strings. Timestamps use RFC3339 with
// milliseconds. Thumbnails are intentionally not shipped: the Job DTO
// carries a hasThumbnail flag and the duration string, which is all the CLI
// renders.
package api
