package enums

import "fmt"

// TicketStatus tracks a kitchen ticket through the station queue.
type TicketStatus string

const (
	TicketStatusQueued     TicketStatus = "QUEUED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusDone       TicketStatus = "DONE"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusQueued,
	TicketStatusInProgress,
	TicketStatusDone,
}

// IsValid reports whether the value matches the canonical ticket status enum.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTicketStatus converts the raw string to TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
