// Package gitparse converts git's script-oriented output into structured records.
//
// Every parser is a pure function from raw text to values. Lines that do not match the
// expected shape are skipped so minor output differences between git versions do not
// turn into failures.
package gitparse
