package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12
)

// Prefixes for different entity types (Stripe-style)
const (
	PrefixPlan         = "plan"
	PrefixSubscription = "sub"
	PrefixEvent        = "evt"
)

// Generate creates a random short ID with the specified length using Base62 encoding.
// The generated ID is cryptographically random and URL-safe.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// GenerateWithPrefix creates a prefixed ID in the format "prefix_randomstring".
// This follows the Stripe-style ID pattern for human-readable identifiers.
func GenerateWithPrefix(prefix string, length int) (string, error) {
	id, err := Generate(length)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, id), nil
}

// MustGenerateWithPrefix creates a prefixed ID and panics on error.
func MustGenerateWithPrefix(prefix string, length int) string {
	id, err := GenerateWithPrefix(prefix, length)
	if err != nil {
		panic(err)
	}
	return id
}

// NewPlanID generates a plan SID (plan_xxx).
func NewPlanID() (string, error) {
	return GenerateWithPrefix(PrefixPlan, DefaultLength)
}

// NewSubscriptionID generates a subscription SID (sub_xxx).
func NewSubscriptionID() (string, error) {
	return GenerateWithPrefix(PrefixSubscription, DefaultLength)
}

// NewEventID generates a subscription event SID (evt_xxx).
func NewEventID() (string, error) {
	return GenerateWithPrefix(PrefixEvent, DefaultLength)
}

// ValidatePrefix checks that sid has the given prefix and a non-empty body.
func ValidatePrefix(sid, prefix string) error {
	want := prefix + "_"
	if !strings.HasPrefix(sid, want) || len(sid) <= len(want) {
		return fmt.Errorf("invalid id %q: expected %sxxxxx", sid, want)
	}
	return nil
}
