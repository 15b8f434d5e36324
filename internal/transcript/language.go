package transcript

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLanguage canonicalises a language hint to its base ISO code
// ("EN", "en-US", "english" -> "en"). An empty or unknown value yields "".
func NormalizeLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return languageFromName(value)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// ValidLanguage reports whether value parses as a BCP 47 language tag or
// names a language in English.
func ValidLanguage(value string) bool {
	value = strings.TrimSpace(value)
	if _, err := language.Parse(value); err == nil {
		return true
	}
	return languageFromName(value) != ""
}

// LanguageName returns the English display name for a language code, or ""
// when the code is empty or unknown.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}

// languageFromName maps an English language name, as some speech APIs report
// it, back to its base code.
func languageFromName(name string) string {
	namer := display.English.Languages()
	for _, tag := range display.Supported.Tags() {
		if strings.EqualFold(namer.Name(tag), name) {
			base, _ := tag.Base()
			return base.String()
		}
	}
	return ""
}
