package enums

import "fmt"

// PaymentType identifies the payment surface an order is collectable on.
type PaymentType string

const (
	PaymentTypeAlipayQR PaymentType = "alipay_qr"
	PaymentTypeWechatQR PaymentType = "wechat_qr"
	PaymentTypeBankCard PaymentType = "bank_card"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeAlipayQR,
	PaymentTypeWechatQR,
	PaymentTypeBankCard,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
