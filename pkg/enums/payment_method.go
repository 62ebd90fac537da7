package enums

import "fmt"

// PaymentMethod describes how a sale is settled at the register.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodDebit    PaymentMethod = "debit"
	PaymentMethodCredit   PaymentMethod = "credit"
	PaymentMethodQRIS     PaymentMethod = "qris"
	PaymentMethodMidtrans PaymentMethod = "midtrans"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodDebit,
	PaymentMethodCredit,
	PaymentMethodQRIS,
	PaymentMethodMidtrans,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsInstant reports whether the method settles at the register with no change due.
func (p PaymentMethod) IsInstant() bool {
	return p == PaymentMethodQRIS
}

// UsesGateway reports whether settlement happens through the payment provider.
func (p PaymentMethod) UsesGateway() bool {
	return p == PaymentMethodMidtrans
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
