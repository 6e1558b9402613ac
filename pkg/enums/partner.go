package enums

import "fmt"

// Partner identifies which of the two co-hosts created the event. Only
// meaningful for event types that support pair names.
type Partner string

const (
	PartnerOne Partner = "partner_one"
	PartnerTwo Partner = "partner_two"
)

var validPartners = []Partner{
	PartnerOne,
	PartnerTwo,
}

// String implements fmt.Stringer.
func (p Partner) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Partner.
func (p Partner) IsValid() bool {
	for _, candidate := range validPartners {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePartner converts raw input into a Partner.
func ParsePartner(value string) (Partner, error) {
	for _, candidate := range validPartners {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner %q", value)
}
