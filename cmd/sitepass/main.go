// Package main provides the entry point for the sitepass CLI.
//
// sitepass derives a different password for every site from a single master
// secret. Nothing but an optional fingerprint of the master secret is ever
// stored: the same master secret and site always give the same passwords.
//
// Usage:
//
//	sitepass ui
//	sitepass derive https://example.com
//	sitepass domain https://www.example.co.uk
//
// See --help for all available options.
package main

// main is the entry point for sitepass.
func main() {
	Execute()
}
