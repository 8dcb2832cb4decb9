package enums

import "fmt"

// OrderType describes how an order reached the kitchen.
type OrderType string

const (
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeWeb      OrderType = "WEB"
)

var validOrderTypes = []OrderType{
	OrderTypeTakeaway,
	OrderTypeDineIn,
	OrderTypeWeb,
}

// IsValid reports whether the value matches the canonical order type enum.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderType converts the raw string to OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
