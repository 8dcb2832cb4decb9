package enums

import "fmt"

// PaymentMethod is how a payment was tendered.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodCoupon PaymentMethod = "COUPON"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodUPI,
	PaymentMethodWallet,
	PaymentMethodCoupon,
}

// IsValid reports whether the value matches the canonical payment method enum.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// AllowsOverpay reports whether the method may tender more than the remaining
// balance. Only cash does; the overflow is returned as change.
func (m PaymentMethod) AllowsOverpay() bool {
	return m == PaymentMethodCash
}

// ParsePaymentMethod converts the raw string to PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
