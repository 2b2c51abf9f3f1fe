package integration

import (
	"strings"

	"golang.org/x/text/language"
)

// LocaleLanguage returns the two letter language of a shop locale such as
// "en_GB".
func LocaleLanguage(locale string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		if len(locale) < 2 {
			return "", false
		}
		return strings.ToLower(locale[:2]), true
	}
	base, _ := tag.Base()
	return base.String(), true
}
