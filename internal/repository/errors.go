// Package repository contains the MySQL implementations of the storage
// gateways consumed by the facade layer. Find methods return (nil, nil)
// when no row matches so callers receive the stored snapshot or its
// absence; typed domain errors (duplicate key, out of stock, already
// purchased) are produced where the database is the last line of
// defence against racing writers.
package repository

import "strings"

// isDuplicateEntry reports whether a MySQL error is a unique-key
// collision (error 1062). String matching keeps the driver's error
// types out of the call sites.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
