// Package services defines the shared error taxonomy used across the capture,
// upload, and retrieval pipeline.
//
// Each failure mode the pipeline can surface to a caller has a sentinel error
// here; Wrap tags a concrete failure with the matching sentinel so callers can
// classify with errors.Is without parsing messages.
package services
