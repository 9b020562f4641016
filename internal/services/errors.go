package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDevice marks failures to start the encoder against a capture source.
	ErrDevice = errors.New("device error")
	// ErrEncode marks an encoder that exited non-zero without being asked to stop.
	ErrEncode = errors.New("encode error")
	// ErrStopTimeout marks a graceful stop that had to be escalated.
	ErrStopTimeout = errors.New("stop timeout")
	// ErrSessionBusy marks an attempt to start a second capture session.
	ErrSessionBusy = errors.New("session busy")
	// ErrStorageUnavailable marks remote-tier operations without a configured backend.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound marks a query interval that overlaps no clip in either tier.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRange marks crop bounds that collapse to empty after clamping.
	ErrInvalidRange = errors.New("invalid range")
	// ErrProbe marks a failed media duration probe.
	ErrProbe = errors.New("probe error")
	// ErrIO marks rename/copy/delete failures on the local filesystem.
	ErrIO = errors.New("io error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
