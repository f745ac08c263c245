package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigit = regexp.MustCompile(`\D`)

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errors = append(errors, ValidationError{"phone", "is required"})
	} else if !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if strings.TrimSpace(input.Category) == "" {
		errors = append(errors, ValidationError{"category", "is required"})
	}

	return errors
}

// UAE and international numbers, with or without the leading +.
func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	return len(cleaned) >= 7 && len(cleaned) <= 15
}

func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, ", ")
}

var priceNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePriceOption turns a range such as "400,000 to 600,000 AED" into its
// midpoint. A single bound ("Above 1,000,000 AED") yields that bound.
func ParsePriceOption(option string) (float64, bool) {
	matches := priceNumber.FindAllString(option, -1)
	var values []float64
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return 0, false
	case 1:
		return values[0], true
	default:
		return (values[0] + values[1]) / 2, true
	}
}
