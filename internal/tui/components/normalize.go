package components

import (
	"strings"
	"unicode"
)

// NormalizeChoice title-cases every word and joins words with dashes, so
// "date created" becomes "Date-Created".
func NormalizeChoice(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r):
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		case r == ' ':
			b.WriteRune('-')
			prevLetter = false
		default:
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// ParseBool accepts true/yes/1/y and false/no/0/n or an empty string. Any
// other input yields false and ok == false.
func ParseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y":
		return true, true
	case "false", "no", "0", "n", "":
		return false, true
	}
	return false, false
}

// SplitList splits a comma separated list, trimming items and dropping empty
// ones.
func SplitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
