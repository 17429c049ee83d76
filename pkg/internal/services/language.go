package services

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var languageDetector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Portuguese,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Japanese,
		).
		Build()
})

// DetectLanguage guesses the language of a caption and returns its ISO
// 639-1 code, or nil when the text is empty or undecidable.
func DetectLanguage(content string) *string {
	if len(strings.TrimSpace(content)) == 0 {
		return nil
	}

	lang, ok := languageDetector().DetectLanguageOf(content)
	if !ok {
		return nil
	}

	code := strings.ToLower(lang.IsoCode639_1().String())
	return &code
}
