package handlers

import (
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/types"
)

// parseMoney parses a decimal string from a request field. An empty string
// means zero.
func parseMoney(field, value string) (types.Money, error) {
	if value == "" {
		return types.Zero(), nil
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		return types.Zero(), apperror.NewValidation("invalid decimal value").
			WithDetail("field", field)
	}
	return m, nil
}
