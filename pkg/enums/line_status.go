package enums

import "fmt"

// LineStatus tracks per-line fulfillment progress inside the butcher shop.
type LineStatus string

const (
	LineStatusPending   LineStatus = "pending"
	LineStatusPreparing LineStatus = "preparing"
	LineStatusReady     LineStatus = "ready"
	LineStatusSent      LineStatus = "sent"
)

var validLineStatuses = []LineStatus{
	LineStatusPending,
	LineStatusPreparing,
	LineStatusReady,
	LineStatusSent,
}

// String implements fmt.Stringer.
func (l LineStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineStatus.
func (l LineStatus) IsValid() bool {
	for _, candidate := range validLineStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLineStatus converts raw input into a LineStatus.
func ParseLineStatus(value string) (LineStatus, error) {
	for _, candidate := range validLineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line status %q", value)
}
