package search

import "fmt"

const (
	// MinTokenLength is the shortest accepted target code.
	MinTokenLength = 6
	// MaxTokenLength is the longest accepted target code.
	MaxTokenLength = 8
)

// ValidateToken reports whether token is 6 to 8 ASCII decimal digits.
func ValidateToken(token string) error {
	if len(token) < MinTokenLength || len(token) > MaxTokenLength {
		return fmt.Errorf("%w: length must be between %d and %d, got %d",
			ErrInvalidToken, MinTokenLength, MaxTokenLength, len(token))
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return fmt.Errorf("%w: non-digit character at position %d", ErrInvalidToken, i)
		}
	}
	return nil
}

// IsValidToken is the boolean form of ValidateToken.
func IsValidToken(token string) bool {
	return ValidateToken(token) == nil
}
