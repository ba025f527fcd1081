package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// episodeSuffix trails every derived episode display title.
const episodeSuffix = "MelodyMind"

// DisplayTitle renders a decade token as a human-readable episode title
// for notifications and run history. Underscores and hyphens read as word
// breaks, lettered words are title-cased, and words led by digits such as
// "1950s" keep their casing.
func DisplayTitle(decade string) string {
	words := splitWords(decade)
	if len(words) == 0 {
		return episodeSuffix
	}

	caser := cases.Title(language.English)
	for i, word := range words {
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsLetter(r) {
			words[i] = caser.String(word)
		}
	}
	return "The " + strings.Join(words, " ") + " — " + episodeSuffix
}

func splitWords(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
}
