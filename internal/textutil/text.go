package textutil

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// CleanText collapses whitespace (including NBSP) and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// StripHTML returns the text content of an HTML fragment. Non-HTML input
// passes through unchanged (minus whitespace cleanup).
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	return CleanText(doc.Text())
}

// Tokenize lowercases s and splits it into alphanumeric word tokens.
// "F-35 Lightning" -> ["f", "35", "lightning"]. Word boundaries are any
// non-alphanumeric rune, so substring hits inside larger words never occur.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TokenKey joins a term's tokens into a canonical comparable form.
func TokenKey(tokens []string) string {
	return strings.Join(tokens, " ")
}
