// Package deps provides readiness checks for the external binaries, local
// directories, and remote tier the pipeline depends on. The status command
// reports every check; the record path runs them up front so a doomed
// recording fails before the encoder ever starts.
package deps
