package mealsafety

import "strings"

// FindKeyword returns the first keyword, in list order, that occurs in text as a
// case-insensitive substring. Empty keywords never match.
func FindKeyword(text string, keywords []string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		k := strings.ToLower(keyword)
		if k == "" {
			continue
		}
		if strings.Contains(lowered, k) {
			return keyword, true
		}
	}
	return "", false
}
