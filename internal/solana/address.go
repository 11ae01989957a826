package solana

import (
	"github.com/go-playground/validator/v10"
	"github.com/mr-tron/base58"
)

const (
	PubkeyLength = 32
	// AddressTag validates a base-58 encoded 32 byte public key.
	AddressTag = "solana_address"
)

// IsAddress reports whether s decodes to a 32 byte public key.
func IsAddress(s string) bool {
	if s == "" {
		return false
	}
	b, err := base58.Decode(s)
	return err == nil && len(b) == PubkeyLength
}

// RegisterValidations installs the custom tags used by the argument types.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(AddressTag, func(fl validator.FieldLevel) bool {
		return IsAddress(fl.Field().String())
	})
}
