package utils

import "github.com/microcosm-cc/bluemonday"

var (
	richTextPolicy = bluemonday.UGCPolicy()
	plainPolicy    = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content (descriptions, about sections) to prevent XSS
// while keeping basic formatting.
func Sanitize(input string) string {
	return richTextPolicy.Sanitize(input)
}

// SanitizePlain strips all markup; used for titles, names and other fields
// that should never contain HTML.
func SanitizePlain(input string) string {
	return plainPolicy.Sanitize(input)
}
