// Package util contains small internal helpers shared across packages. It
// lives under internal to avoid committing to public API stability.
package util

import "github.com/google/uuid"

// NewID returns a new random identifier suitable for correlating log lines
// and report deliveries.
func NewID() string { return uuid.NewString() }
