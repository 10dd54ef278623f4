package generator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned by ParseVariant for names that are not in DefaultVariants.
var ErrUnknownVariant = errors.New("unknown password variant")

// Flags selects one of the legacy output formats.
type Flags struct {
	// Big selects a 50 character password instead of 16.
	Big bool `json:"big"`
	// OnlyNumbers selects a digits-only password. It overrides SpecialChars.
	OnlyNumbers bool `json:"onlyNumbers"`
	// SpecialChars appends a suffix containing special characters.
	SpecialChars bool `json:"specialChars"`
}

// String returns a compact representation such as "big,special".
func (f Flags) String() string {
	parts := make([]string, 0, 3)
	if f.Big {
		parts = append(parts, "big")
	}
	if f.OnlyNumbers {
		parts = append(parts, "numbers")
	}
	if f.SpecialChars {
		parts = append(parts, "special")
	}
	if len(parts) == 0 {
		return "plain"
	}
	return strings.Join(parts, ",")
}

// Variant is a named format that a UI offers to the user.
type Variant struct {
	// Name is a stable identifier usable on the command line.
	Name string `json:"name"`
	// Description is a human readable label.
	Description string `json:"description"`
	// Flags is the format passed to Derive.
	Flags Flags `json:"flags"`
}

// DefaultVariants returns the six variants offered for every site, in display order.
// The first one is the recommended password; the others exist for sites with
// restrictive password rules.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: "long-special", Description: "Long with special characters", Flags: Flags{Big: true, OnlyNumbers: false, SpecialChars: true}},
		{Name: "long", Description: "Long without special characters", Flags: Flags{Big: true, OnlyNumbers: false, SpecialChars: false}},
		{Name: "long-digits", Description: "Long digits only", Flags: Flags{Big: true, OnlyNumbers: true, SpecialChars: true}},
		{Name: "short-special", Description: "Short with special characters", Flags: Flags{Big: false, OnlyNumbers: false, SpecialChars: true}},
		{Name: "short", Description: "Short without special characters", Flags: Flags{Big: false, OnlyNumbers: false, SpecialChars: false}},
		{Name: "short-digits", Description: "Short digits only", Flags: Flags{Big: false, OnlyNumbers: true, SpecialChars: true}},
	}
}

// ParseVariant looks up a variant of DefaultVariants by name (case-insensitive).
func ParseVariant(name string) (Variant, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, v := range DefaultVariants() {
		if v.Name == want {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// ParseVariants resolves a list of names. An empty list means DefaultVariants.
func ParseVariants(names []string) ([]Variant, error) {
	if len(names) == 0 {
		return DefaultVariants(), nil
	}
	variants := make([]Variant, 0, len(names))
	for _, name := range names {
		v, err := ParseVariant(name)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// Password is a derived password together with the variant that produced it.
type Password struct {
	Variant Variant `json:"variant"`
	Value   string  `json:"value"`
}

// DeriveVariants derives one password per variant, in the order given.
func DeriveVariants(masterSecret, domain string, variants []Variant) []Password {
	passwords := make([]Password, len(variants))
	for i, v := range variants {
		passwords[i] = Password{
			Variant: v,
			Value:   DeriveFlags(masterSecret, domain, v.Flags),
		}
	}
	return passwords
}
