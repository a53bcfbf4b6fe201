package resolve

import (
	"strings"

	"github.com/jeandeaual/go-locale"
)

// FallbackLanguage is used when the system locale cannot be determined.
const FallbackLanguage = "en_US"

// DefaultLanguage returns the dictionary language matching the user's
// locale, in hunspell form (en_US).
func DefaultLanguage() string {
	loc, err := locale.GetLocale()
	if err != nil {
		return FallbackLanguage
	}
	if lang := normalizeLocale(loc); lang != "" {
		return lang
	}
	return FallbackLanguage
}

// normalizeLocale turns "en-US", "en_US.UTF-8" or "de" into hunspell form.
func normalizeLocale(loc string) string {
	loc, _, _ = strings.Cut(loc, ".")
	loc, _, _ = strings.Cut(loc, "@")
	loc = strings.TrimSpace(strings.ReplaceAll(loc, "-", "_"))
	if loc == "" || loc == "C" || loc == "POSIX" {
		return ""
	}
	primary, region, ok := strings.Cut(loc, "_")
	primary = strings.ToLower(primary)
	if !ok {
		return primary
	}
	return primary + "_" + strings.ToUpper(region)
}
