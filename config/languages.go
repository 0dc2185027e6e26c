package config

import "coderoom/core"

// LanguageValidator implements core.LanguageValidator against the configured
// allow-list, keeping the list in configuration rather than in domain types.
type LanguageValidator struct {
	languages []string
	set       map[string]struct{}
}

// NewLanguageValidator builds a validator from configured language tags.
// Tags are normalized (trimmed, lower-cased) and de-duplicated.
func NewLanguageValidator(languages []string) *LanguageValidator {
	v := &LanguageValidator{set: make(map[string]struct{}, len(languages))}
	for _, language := range languages {
		normalized := core.NormalizeLanguage(language)
		if normalized == "" {
			continue
		}
		if _, seen := v.set[normalized]; seen {
			continue
		}
		v.set[normalized] = struct{}{}
		v.languages = append(v.languages, normalized)
	}
	return v
}

// IsValid reports whether a language tag belongs to the allow-list.
func (v *LanguageValidator) IsValid(language string) bool {
	_, ok := v.set[core.NormalizeLanguage(language)]
	return ok
}

// Languages returns the normalized allow-list in configured order.
func (v *LanguageValidator) Languages() []string {
	return append([]string(nil), v.languages...)
}
