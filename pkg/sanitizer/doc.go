// Package sanitizer normalizes free-text guest and inventory input before it
// is validated and stored.
//
// Every function is idempotent. Invalid input is never an error: text
// collapses to its trimmed form and slices drop blanks and duplicates.
package sanitizer
