// Package github implements trend sources backed by GitHub: the search API
// for recently popular repositories and the public trending page.
package github

import (
	"strings"
	"unicode"
)

// keywordsPerRepo caps how many terms one repository may contribute.
const keywordsPerRepo = 5

// ExtractKeywords pulls candidate domain keywords out of repository text
// (name plus description). Terms are lowercased, hyphens split, and only
// purely alphabetic words longer than three characters survive.
func ExtractKeywords(text string) []string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(text), "-", " "))

	keywords := make([]string, 0, keywordsPerRepo)
	for _, word := range words {
		if len(word) <= 3 || !isAlpha(word) {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == keywordsPerRepo {
			break
		}
	}
	return keywords
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
