package locale

import "strings"

type Locale string

const (
	EnglishUS  Locale = "en-US"
	SpanishES  Locale = "es-ES"
	Indonesian Locale = "id-ID"

	Default = EnglishUS
)

var supported = []Locale{EnglishUS, SpanishES, Indonesian}

// Table holds one user-facing string per locale.
type Table map[Locale]string

func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

func (l Locale) IsSupported() bool {
	for _, s := range supported {
		if s == l {
			return true
		}
	}
	return false
}

func (l Locale) Language() string {
	lang, _, _ := strings.Cut(string(l), "-")
	return strings.ToLower(lang)
}

// Parse maps loose tags ("es", "ES_es", "id-id") onto a supported locale,
// falling back to Default.
func Parse(tag string) Locale {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return Default
	}

	for _, s := range supported {
		if strings.EqualFold(string(s), tag) {
			return s
		}
	}

	lang, _, _ := strings.Cut(strings.ToLower(tag), "-")
	for _, s := range supported {
		if s.Language() == lang {
			return s
		}
	}

	return Default
}

// Localize picks the entry for l, then the Default entry, then any entry.
func Localize(table Table, l Locale) string {
	if s, ok := table[l]; ok && s != "" {
		return s
	}
	if s, ok := table[Default]; ok {
		return s
	}
	for _, s := range supported {
		if v, ok := table[s]; ok {
			return v
		}
	}
	return ""
}
