package engine

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

func newLanguageAxis(d Device) *axis[string] {
	var langs []string
	for _, l := range d.Locales {
		if b := baseLanguage(l); b != "" && !slices.Contains(langs, b) {
			langs = append(langs, b)
		}
	}
	return &axis[string]{
		dim:     DimensionLanguage,
		present: len(langs) > 0,
		device:  listString(d.Locales),
		apk:     func(t ApkTargeting) *ValueSet[string] { return t.Language },
		match: func(vs *ValueSet[string]) bool {
			values := baseLanguages(vs.Values)
			if len(values) > 0 {
				return containsAny(values, langs)
			}
			// The fallback applies unless the alternatives cover every locale.
			alts := baseLanguages(vs.Alternatives)
			for _, l := range langs {
				if !slices.Contains(alts, l) {
					return true
				}
			}
			return false
		},
		format: func(v string) string { return v },
	}
}

func baseLanguages(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if b := baseLanguage(t); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// baseLanguage reduces a locale tag such as "en-GB" or "fr_FR" to its
// lower-case base language.
func baseLanguage(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		if b, conf := t.Base(); conf != language.No {
			return b.String()
		}
	}
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}
