package enums

import "fmt"

// SettlementKind distinguishes the two reconciliation batch variants.
type SettlementKind string

const (
	SettlementKindGym     SettlementKind = "gym"
	SettlementKindButcher SettlementKind = "butcher"
)

var validSettlementKinds = []SettlementKind{
	SettlementKindGym,
	SettlementKindButcher,
}

// String implements fmt.Stringer.
func (s SettlementKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SettlementKind.
func (s SettlementKind) IsValid() bool {
	for _, candidate := range validSettlementKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSettlementKind converts raw input into a SettlementKind.
func ParseSettlementKind(value string) (SettlementKind, error) {
	for _, candidate := range validSettlementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement kind %q", value)
}
