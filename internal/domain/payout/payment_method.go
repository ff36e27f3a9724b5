package payout

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// PaymentMethod identifies how a payout is disbursed
type PaymentMethod string

const (
	MethodBank   PaymentMethod = "bank"
	MethodPayPal PaymentMethod = "paypal"
	MethodMpesa  PaymentMethod = "mpesa"
	MethodStripe PaymentMethod = "stripe"
	MethodCrypto PaymentMethod = "crypto"
)

// AllPaymentMethods lists the supported payment methods in display order
var AllPaymentMethods = []PaymentMethod{MethodBank, MethodPayPal, MethodMpesa, MethodStripe, MethodCrypto}

var requiredFields = map[PaymentMethod][]string{
	MethodBank:   {"account_name", "account_number", "routing_number", "bank_name"},
	MethodPayPal: {"email"},
	MethodMpesa:  {"phone_number"},
	MethodStripe: {"account_id"},
	MethodCrypto: {"wallet_address"},
}

var recommendedFields = map[PaymentMethod][]string{
	MethodCrypto: {"currency"},
}

var detailValidator = validator.New()

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	_, ok := requiredFields[m]
	return ok
}

// String returns the string representation
func (m PaymentMethod) String() string {
	return string(m)
}

// RequiredFields returns the detail fields the method needs
func (m PaymentMethod) RequiredFields() []string {
	return append([]string(nil), requiredFields[m]...)
}

// RecommendedFields returns optional detail fields worth collecting
func (m PaymentMethod) RecommendedFields() []string {
	return append([]string(nil), recommendedFields[m]...)
}

// ParsePaymentMethod parses a method string, rejecting unknown methods
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError(shared.CodeUnsupportedMethod,
			fmt.Sprintf("Unsupported payment method: %s", s))
	}
	return m, nil
}

// ToSnakeCase converts a camelCase or PascalCase key to snake_case.
// Keys already in snake_case are returned unchanged.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' &&
				(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeDetails returns a copy of details with every key in snake_case
func NormalizeDetails(details map[string]any) map[string]any {
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[ToSnakeCase(k)] = v
	}
	return out
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// ValidateDetails normalizes details to snake_case and checks them against the method's
// required field set. Every missing field is reported, not just the first.
func ValidateDetails(method PaymentMethod, details map[string]any) (map[string]any, error) {
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeUnsupportedMethod,
			fmt.Sprintf("Unsupported payment method: %s", method))
	}
	normalized := NormalizeDetails(details)

	var missing []string
	for _, field := range requiredFields[method] {
		if isBlank(normalized[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, shared.MissingFieldsError(
			fmt.Sprintf("Missing required fields for %s", method), missing)
	}

	switch method {
	case MethodPayPal:
		email := fmt.Sprint(normalized["email"])
		if err := detailValidator.Var(email, "required,email"); err != nil {
			return nil, shared.NewValidationError("Invalid PayPal email",
				shared.FieldError{Field: "email", Message: "Enter a valid email address."})
		}
	case MethodMpesa:
		if !isPhoneNumber(fmt.Sprint(normalized["phone_number"])) {
			return nil, shared.NewValidationError("Invalid M-Pesa phone number",
				shared.FieldError{Field: "phone_number", Message: "Enter a valid phone number."})
		}
	}
	return normalized, nil
}

// isPhoneNumber accepts digits with an optional leading plus and common separators
func isPhoneNumber(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
