// Package sqlite implements the entdb Database contract on an embedded
// SQLite file, giving the store durability without an external server.
package sqlite
