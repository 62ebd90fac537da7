package enums

import "fmt"

// SettingKey enumerates the per-store configuration keys the API accepts.
type SettingKey string

const (
	SettingKeyReceiptHeader SettingKey = "receipt_header"
	SettingKeyReceiptFooter SettingKey = "receipt_footer"
	SettingKeyTheme         SettingKey = "theme"
	SettingKeyLanguage      SettingKey = "language"
)

var validSettingKeys = []SettingKey{
	SettingKeyReceiptHeader,
	SettingKeyReceiptFooter,
	SettingKeyTheme,
	SettingKeyLanguage,
}

// String implements fmt.Stringer.
func (k SettingKey) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SettingKey.
func (k SettingKey) IsValid() bool {
	for _, candidate := range validSettingKeys {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSettingKey converts raw input into a SettingKey.
func ParseSettingKey(value string) (SettingKey, error) {
	for _, candidate := range validSettingKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid setting key %q", value)
}
