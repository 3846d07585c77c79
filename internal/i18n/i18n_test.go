package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogsComplete(t *testing.T) {
	for lang, msgs := range messages {
		assert.Len(t, msgs, len(messages[Default]), lang)
		for key := range messages[Default] {
			assert.Contains(t, msgs, key, "%s missing %s", lang, key)
		}
	}
}

func TestMatch(t *testing.T) {
	c := New()

	tests := map[string]string{
		"en":                   "en",
		"es-MX":                "es",
		"de-CH":                "de",
		"fr-CA,fr;q=0.9":       "fr",
		"ja":                   "en",
		"":                     "en",
		"not a tag!":           "en",
		"ja,de;q=0.8,en;q=0.5": "de",
	}
	for in, want := range tests {
		assert.Equal(t, want, c.Match(in), in)
	}
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{"en", "es", "de", "fr"}, New().Supported())
}

func TestT(t *testing.T) {
	c := New()

	assert.Equal(t, "Copied: 1 234", c.T("en", KeyCopyDone, "1 234"))
	assert.Equal(t, "Copiado: 1 234", c.T("es", KeyCopyDone, "1 234"))
	assert.Equal(t, "Sprache auf de gesetzt", c.T("de-AT", KeyLangSet, "de"))
	assert.Equal(t, "Settings saved", c.T("ja", KeySettingsSaved))
	assert.Equal(t, "Keep between 2 and 6 currencies", c.T("en", KeyCurrencyLimit, 2, 6))
	assert.Equal(t, "no.such.key", c.T("en", "no.such.key"))
}
