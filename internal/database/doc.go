// Package database provides the SQLite store of master secret fingerprints.
//
// A fingerprint is the hex SHA3-512 of the master secret followed by the
// word "password" (see generator.MasterHash). When a secret is typed again,
// its fingerprint is looked up to tell the user whether this secret was used
// on this machine before. Neither the master secret nor any derived
// password is ever written to the database.
//
// The store uses modernc.org/sqlite, a CGO-free driver, with one file in the
// XDG data directory.
package database
