package listing

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Persian text is frequently typed with Arabic codepoints for yeh and kaf.
// Fold them so a search for "می" also matches text stored with U+064A.
var persianFolder = strings.NewReplacer(
	"ي", "ی", // ARABIC YEH -> FARSI YEH
	"ك", "ک", // ARABIC KAF -> KEHEH
	"ة", "ه", // TEH MARBUTA -> HEH
	"‌", " ", // ZWNJ -> space
)

// NormalizeTerm prepares a user search term for case-insensitive substring
// matching: NFC form, Arabic/Persian letter folding, lower case, trimmed.
func NormalizeTerm(s string) string {
	s = norm.NFC.String(s)
	s = persianFolder.Replace(s)
	return strings.ToLower(strings.TrimSpace(s))
}
