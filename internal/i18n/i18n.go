// Package i18n holds the user-facing message catalogs and picks the best
// supported language for a requested tag.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const Default = "en"

type Catalog struct {
	tags    []language.Tag
	matcher language.Matcher
	builder *catalog.Builder
}

func New() *Catalog {
	tags := []language.Tag{language.English, language.Spanish, language.German, language.French}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, msgs := range messages {
		tag := language.MustParse(lang)
		for key, msg := range msgs {
			// Keys and formats are static; SetString only fails on malformed input.
			_ = b.SetString(tag, key, msg)
		}
	}

	return &Catalog{
		tags:    tags,
		matcher: language.NewMatcher(tags),
		builder: b,
	}
}

// Supported returns the base codes of every catalog, default first.
func (c *Catalog) Supported() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		base, _ := t.Base()
		out[i] = base.String()
	}
	return out
}

// Match maps any BCP 47 tag or Accept-Language value to a supported code.
func (c *Catalog) Match(lang string) string {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return Default
	}

	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := c.tags[idx].Base()
	return base.String()
}

// T formats the message key in lang. Unknown keys are printed as is.
func (c *Catalog) T(lang, key string, args ...interface{}) string {
	tag := c.tags[0]
	if t, err := language.Parse(c.Match(lang)); err == nil {
		tag = t
	}
	return message.NewPrinter(tag, message.Catalog(c.builder)).Sprintf(key, args...)
}
