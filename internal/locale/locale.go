// Package locale resolves server-authored copy. Lookup is purely additive:
// a missing key falls back to the key itself (or a host-provided default),
// so partially localized configurations degrade instead of failing.
package locale

import (
	"strings"

	"github.com/loopwell/invitekit/internal/schema"
)

// Localizer answers copy lookups for one configuration.
type Localizer struct {
	strings map[string]string
}

// NewLocalizer builds a localizer over a configuration's localized strings.
// Nil configurations and absent string tables are valid.
func NewLocalizer(cfg *schema.Configuration) *Localizer {
	if cfg == nil {
		return &Localizer{}
	}
	return &Localizer{strings: cfg.LocalizedStrings}
}

// Text returns the localized value for key, or the key itself.
func (l *Localizer) Text(key string) string {
	if l != nil {
		if value, ok := l.strings[key]; ok && value != "" {
			return value
		}
	}
	return key
}

// TextDefault returns the localized value for key, or fallback.
func (l *Localizer) TextDefault(key, fallback string) string {
	if l != nil {
		if value, ok := l.strings[key]; ok && value != "" {
			return value
		}
	}
	return fallback
}

// Has reports whether key is localized.
func (l *Localizer) Has(key string) bool {
	if l == nil {
		return false
	}
	value, ok := l.strings[key]
	return ok && value != ""
}

// Normalize canonicalizes a locale tag: separators become hyphens, the
// language segment is lowercased, region segments keep their case
// ("ES_419" becomes "es-419", "pt_BR" becomes "pt-BR").
func Normalize(tag string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if cleaned == "" {
		return ""
	}
	segments := strings.Split(cleaned, "-")
	segments[0] = strings.ToLower(segments[0])
	return strings.Join(segments, "-")
}
