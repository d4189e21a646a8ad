package enums

import "fmt"

// CartEvent names a lifecycle notification emitted by a live cart.
type CartEvent string

const (
	CartEventProductAdded   CartEvent = "product_added"
	CartEventProductRemoved CartEvent = "product_removed"
	CartEventCartDeleted    CartEvent = "cart_deleted"
)

var validCartEvents = []CartEvent{
	CartEventProductAdded,
	CartEventProductRemoved,
	CartEventCartDeleted,
}

// String implements fmt.Stringer.
func (c CartEvent) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartEvent.
func (c CartEvent) IsValid() bool {
	for _, candidate := range validCartEvents {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartEvent converts raw input into a CartEvent.
func ParseCartEvent(value string) (CartEvent, error) {
	for _, candidate := range validCartEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart event %q", value)
}
