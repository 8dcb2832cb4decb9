package enums

import "fmt"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusInKitchen OrderStatus = "IN_KITCHEN"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusClosed    OrderStatus = "CLOSED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusInKitchen,
	OrderStatusReady,
	OrderStatusClosed,
	OrderStatusCanceled,
}

// IsValid reports whether the value matches the canonical order status enum.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts the raw string to OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
