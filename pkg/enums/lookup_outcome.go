package enums

import "fmt"

// LookupOutcome labels how a product lookup was resolved.
type LookupOutcome string

const (
	LookupOutcomeFound       LookupOutcome = "found"
	LookupOutcomeNotFound    LookupOutcome = "not_found"
	LookupOutcomeError       LookupOutcome = "error"
	LookupOutcomeBreakerOpen LookupOutcome = "breaker_open"
	LookupOutcomeCacheHit    LookupOutcome = "cache_hit"
)

var validLookupOutcomes = []LookupOutcome{
	LookupOutcomeFound,
	LookupOutcomeNotFound,
	LookupOutcomeError,
	LookupOutcomeBreakerOpen,
	LookupOutcomeCacheHit,
}

// String implements fmt.Stringer.
func (o LookupOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known LookupOutcome.
func (o LookupOutcome) IsValid() bool {
	for _, candidate := range validLookupOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseLookupOutcome converts raw input into a LookupOutcome.
func ParseLookupOutcome(value string) (LookupOutcome, error) {
	for _, candidate := range validLookupOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lookup outcome %q", value)
}
