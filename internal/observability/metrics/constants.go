// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Label values for job and session outcomes.
const (
	// StatusSuccess marks an operation that completed without error.
	StatusSuccess = "success"
	// StatusError marks an operation that returned an error.
	StatusError = "error"
	// StatusPanic marks a job whose body panicked.
	StatusPanic = "panic"
)

// Session stop reasons.
const (
	ReasonAutoStop = "autostop"
	ReasonManual   = "manual"
	ReasonShutdown = "shutdown"
)

// Histogram bucket configuration constants.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001

	BucketFactor2 = 2
	BucketFactor4 = 4

	BucketCount10 = 10
	BucketCount12 = 12
)

// Time and conversion constants.
const (
	// ShutdownTimeout is the timeout for graceful shutdown of the metrics server.
	ShutdownTimeout = 5 * time.Second
	// PercentageFactor is the multiplier to convert ratio to percentage.
	PercentageFactor = 100.0
)
