package game

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeID returns the canonical form of a catalog or user identifier.
//
// Identifiers are NFC normalized and trimmed so that ids typed by hand in a
// catalog file or supplied by an identity provider compare byte-for-byte.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
