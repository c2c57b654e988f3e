// Package preflight provides readiness checks for the directories v2s
// writes to. The daemon logs the results at startup and the status command
// surfaces them so permission problems show up before the first job fails.
package preflight
