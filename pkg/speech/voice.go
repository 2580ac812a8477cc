package speech

import (
	"strings"

	"MediVoice/pkg/locale"
)

// PickVoice chooses the voice for l: an exact locale match, then the same
// language, then the platform default. It returns "" when nothing fits.
func PickVoice(voices []Voice, l locale.Locale) string {
	for _, v := range voices {
		if strings.EqualFold(strings.ReplaceAll(v.Locale, "_", "-"), string(l)) {
			return v.ID
		}
	}

	lang := l.Language()
	for _, v := range voices {
		if voiceLanguage(v.Locale) == lang {
			return v.ID
		}
	}

	for _, v := range voices {
		if v.Default {
			return v.ID
		}
	}
	return ""
}

func voiceLanguage(tag string) string {
	tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		return tag[:i]
	}
	return tag
}
