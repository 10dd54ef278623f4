// Package generator derives site-specific passwords from a master secret.
//
// Derivation is deterministic: the same master secret, domain and format
// flags always produce the same password, on every machine and in every
// release. Nothing is stored. A password is recomputed each time it is
// needed.
//
// # Algorithm
//
// The master secret, a fixed pepper and the domain are concatenated and
// hashed with SHA3-512. The 64-byte digest is then rendered in one of the
// legacy formats selected by Flags:
//
//   - hexadecimal prefix followed by a fixed suffix ("943SOD", "*_BQ", "@*_BQF")
//   - decimal rendering of every digest byte, truncated (OnlyNumbers)
//
// The pepper and the suffix literals are compatibility constants, not
// secrets. Changing any of them changes every password ever generated.
//
// # Variants
//
// Most callers want the six variants historically offered by the UI:
//
//	passwords := generator.DeriveVariants(master, "example.com", generator.DefaultVariants())
package generator
