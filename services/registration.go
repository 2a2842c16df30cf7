package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	registrationPrefix   = "REG-"
	registrationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	registrationSuffix   = 6

	// attempts before giving up on unique registration numbers
	maxRegistrationAttempts = 5
)

var registrationPattern = regexp.MustCompile(`^REG-\d{8}-[A-Z0-9]{6}$`)

// RegistrationGenerator produces a candidate registration number for the given day.
type RegistrationGenerator func(now time.Time) (string, error)

// NewRegistrationNumber returns REG-YYYYMMDD-XXXXXX with a random uppercase
// alphanumeric suffix. Uniqueness is enforced by the store.
func NewRegistrationNumber(now time.Time) (string, error) {
	suffix := make([]byte, registrationSuffix)
	max := big.NewInt(int64(len(registrationAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate registration suffix: %w", err)
		}
		suffix[i] = registrationAlphabet[n.Int64()]
	}
	return registrationPrefix + now.Format("20060102") + "-" + string(suffix), nil
}

// IsRegistrationNumber reports whether s has the registration number shape.
func IsRegistrationNumber(s string) bool {
	return registrationPattern.MatchString(s)
}
