// Package uploader drains finalized clips from the staging directory into
// the remote tier with at-least-once delivery. A startup reconcile computes
// the local-minus-remote set difference so clips stranded by a crash or an
// offline remote are retried on the next run.
package uploader
