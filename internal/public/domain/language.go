package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is one of the content languages the store API serves.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageItalian Language = "it"
)

// SupportedLanguages lists content languages in fallback order.
var SupportedLanguages = []Language{LanguageEnglish, LanguageSpanish, LanguageItalian}

// ParseLanguage accepts any BCP-47 tag whose base language is supported ("es-MX" -> "es").
func ParseLanguage(value string) (Language, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("language is required")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", value, err)
	}
	base, confidence := tag.Base()
	if confidence < language.High {
		return "", fmt.Errorf("unsupported language: %s", value)
	}
	lang := Language(base.String())
	for _, supported := range SupportedLanguages {
		if lang == supported {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unsupported language: %s", value)
}

func (l Language) String() string {
	return string(l)
}

// LocalizedText carries the same text in every supported language.
type LocalizedText struct {
	En string `json:"en"`
	Es string `json:"es"`
	It string `json:"it"`
}

// In returns the text for lang, falling back to English when missing.
func (t LocalizedText) In(lang Language) string {
	var value string
	switch lang {
	case LanguageSpanish:
		value = t.Es
	case LanguageItalian:
		value = t.It
	default:
		value = t.En
	}
	if strings.TrimSpace(value) == "" {
		return t.En
	}
	return value
}
