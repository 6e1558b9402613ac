package enums

import "fmt"

// EventType is the celebration category an event belongs to.
type EventType string

const (
	EventTypeChaDePanela EventType = "cha_de_panela"
	EventTypeChaDeBebe   EventType = "cha_de_bebe"
	EventTypeCasamento   EventType = "casamento"
	EventTypeAniversario EventType = "aniversario"
	EventTypeOther       EventType = "other"
)

var validEventTypes = []EventType{
	EventTypeChaDePanela,
	EventTypeChaDeBebe,
	EventTypeCasamento,
	EventTypeAniversario,
	EventTypeOther,
}

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// SupportsPairNames reports whether events of this type are co-hosted by a
// couple, which enables the partner name convenience fields.
func (e EventType) SupportsPairNames() bool {
	switch e {
	case EventTypeChaDePanela, EventTypeCasamento:
		return true
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
