// Package logging wraps log/slog with the handlers and attribute helpers the
// rest of the pipeline uses.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log files and machine consumption. Component loggers carry
// a standardized "component" attribute that the console handler renders as a
// bracketed prefix. ProgressSampler keeps upload progress output to one line
// per bucket instead of one per callback.
package logging
