package enums

import "fmt"

// GiftStatus tracks where a gift sits in its reservation lifecycle.
type GiftStatus string

const (
	GiftStatusAvailable GiftStatus = "available"
	GiftStatusReserved  GiftStatus = "reserved"
	GiftStatusReceived  GiftStatus = "received"
)

var validGiftStatuses = []GiftStatus{
	GiftStatusAvailable,
	GiftStatusReserved,
	GiftStatusReceived,
}

// String implements fmt.Stringer.
func (g GiftStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GiftStatus.
func (g GiftStatus) IsValid() bool {
	for _, candidate := range validGiftStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGiftStatus converts raw input into a GiftStatus.
func ParseGiftStatus(value string) (GiftStatus, error) {
	for _, candidate := range validGiftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gift status %q", value)
}
