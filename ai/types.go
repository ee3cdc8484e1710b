package ai

import "strings"

// Profile names the language conventions (stop words, stemmer) used when
// summarizing.
type Profile string

const (
	ProfileEnglish Profile = "english"
	ProfileFrench  Profile = "french"
	ProfileGerman  Profile = "german"
	ProfileSpanish Profile = "spanish"
)

// DefaultProfile is used for language codes with no dedicated profile.
const DefaultProfile = ProfileEnglish

// languageProfiles maps ISO 639-1 codes to summarization profiles.
// Vietnamese, Chinese and Japanese have no stemmer and fall back to English.
var languageProfiles = map[string]Profile{
	"en": ProfileEnglish,
	"vi": ProfileEnglish,
	"fr": ProfileFrench,
	"de": ProfileGerman,
	"es": ProfileSpanish,
	"zh": ProfileEnglish,
	"ja": ProfileEnglish,
}

// ProfileForLanguage selects the profile for a language code. Region
// suffixes are ignored ("en-US" is "en").
func ProfileForLanguage(code string) Profile {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if p, ok := languageProfiles[code]; ok {
		return p
	}
	return DefaultProfile
}
