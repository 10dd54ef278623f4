package generator

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Pepper is mixed into every derivation between the master secret and the domain.
// It must never change.
const Pepper = "35Pqfs6FeEf545fD54"

// Output lengths in characters.
const (
	// ShortLength is the length of passwords derived without Big.
	ShortLength = 16
	// LongLength is the length of passwords derived with Big.
	LongLength = 50
)

// Fixed suffixes appended to hexadecimal passwords.
const (
	suffixSpecialLong  = "@*_BQF"
	suffixSpecialShort = "*_BQ"
	suffixPlain        = "943SOD"
)

// masterHashSuffix is appended to the master secret before computing MasterHash.
const masterHashSuffix = "password"

// Derive computes the password for masterSecret on domain.
//
// big selects a 50 character password instead of 16. onlyNumbers renders
// the digest as decimal digits and ignores specialChars. specialChars
// replaces the plain suffix with one containing special characters while
// keeping the same length.
//
// Derive accepts any input, including empty strings, and never fails.
func Derive(masterSecret, domain string, big, onlyNumbers, specialChars bool) string {
	length := ShortLength
	if big {
		length = LongLength
	}

	sum := sha3.Sum512([]byte(masterSecret + Pepper + domain))

	if onlyNumbers {
		var digits strings.Builder
		digits.Grow(len(sum) * 3)
		for _, b := range sum {
			digits.WriteString(strconv.Itoa(int(b)))
		}
		// 64 bytes always render to at least 64 digits, more than LongLength.
		return digits.String()[:length]
	}

	prefix := length/2 - 3
	if specialChars && !big {
		prefix = length/2 - 2
	}
	password := hex.EncodeToString(sum[:prefix])

	switch {
	case specialChars && big:
		return password + suffixSpecialLong
	case specialChars:
		return password + suffixSpecialShort
	default:
		return password + suffixPlain
	}
}

// DeriveFlags is Derive with the format selected by f.
func DeriveFlags(masterSecret, domain string, f Flags) string {
	return Derive(masterSecret, domain, f.Big, f.OnlyNumbers, f.SpecialChars)
}

// Length returns the number of characters Derive produces for f.
// SpecialChars never changes the length.
func Length(f Flags) int {
	if f.Big {
		return LongLength
	}
	return ShortLength
}

// MasterHash returns the hex encoded SHA3-512 fingerprint of masterSecret.
// Only this fingerprint is ever persisted, to tell the user whether a master
// secret was already used on this machine.
func MasterHash(masterSecret string) string {
	sum := sha3.Sum512([]byte(masterSecret + masterHashSuffix))
	return hex.EncodeToString(sum[:])
}
