package enums

import "fmt"

// IdempotencyStatus is the lifecycle state of an idempotency record. A record
// is created PENDING and transitions exactly once to COMPLETED or FAILED.
type IdempotencyStatus string

const (
	IdempotencyStatusPending   IdempotencyStatus = "PENDING"
	IdempotencyStatusCompleted IdempotencyStatus = "COMPLETED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)

var validIdempotencyStatuses = []IdempotencyStatus{
	IdempotencyStatusPending,
	IdempotencyStatusCompleted,
	IdempotencyStatusFailed,
}

// IsValid reports whether the value matches the canonical idempotency status enum.
func (s IdempotencyStatus) IsValid() bool {
	for _, candidate := range validIdempotencyStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIdempotencyStatus converts the raw string to IdempotencyStatus.
func ParseIdempotencyStatus(value string) (IdempotencyStatus, error) {
	for _, candidate := range validIdempotencyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid idempotency status %q", value)
}
