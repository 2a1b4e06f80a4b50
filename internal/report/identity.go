package report

import (
	"golang.org/x/text/language"
)

// Identity holds the strings a host shows for the report.
type Identity struct {
	OutputName  string
	Category    string
	Name        string
	Description string
}

// Localized serves Identity strings per locale, falling back to a default.
type Localized struct {
	fallback Identity
	tags     []language.Tag
	byTag    []Identity
	matcher  language.Matcher
}

// NewLocalized creates a catalog whose only entry is the fallback identity.
func NewLocalized(fallback Identity) *Localized {
	l := &Localized{fallback: fallback}
	l.rebuild()
	return l
}

// Add registers identity strings for a locale. Empty fields use the fallback.
func (l *Localized) Add(tag language.Tag, id Identity) {
	if id.Name == "" {
		id.Name = l.fallback.Name
	}
	if id.Description == "" {
		id.Description = l.fallback.Description
	}
	l.tags = append(l.tags, tag)
	l.byTag = append(l.byTag, id)
	l.rebuild()
}

func (l *Localized) rebuild() {
	// index 0 is the fallback so an unmatched locale resolves to it
	l.matcher = language.NewMatcher(append([]language.Tag{language.Und}, l.tags...))
}

// Lookup returns the identity best matching the locale.
func (l *Localized) Lookup(locale language.Tag) Identity {
	_, idx, conf := l.matcher.Match(locale)
	if conf == language.No || idx == 0 {
		return l.fallback
	}
	return l.byTag[idx-1]
}
