package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input   string
		want    Language
		wantErr bool
	}{
		{input: "en", want: LanguageEnglish},
		{input: "ES", want: LanguageSpanish},
		{input: "it-IT", want: LanguageItalian},
		{input: "es-MX", want: LanguageSpanish},
		{input: "fr", wantErr: true},
		{input: "", wantErr: true},
		{input: `en") { __schema`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLanguage(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalizedTextIn(t *testing.T) {
	text := LocalizedText{En: "Fresh pasta", Es: "Pasta fresca"}

	assert.Equal(t, "Pasta fresca", text.In(LanguageSpanish))
	assert.Equal(t, "Fresh pasta", text.In(LanguageItalian), "missing translation falls back to English")
	assert.Equal(t, "Fresh pasta", text.In(LanguageEnglish))
}
