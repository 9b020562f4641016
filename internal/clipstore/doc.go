// Package clipstore provides a uniform view over the two clip storage tiers:
// the flat local staging directory and the S3-compatible remote store.
//
// There is no metadata database. Listing a tier decodes each filename through
// the timeindex codec; names that do not decode are invisible to the index.
// The remote tier is optional: without one the store runs local-only and
// remote-specific operations fail with services.ErrStorageUnavailable.
package clipstore
