package atomicconfig

import (
	"os"
	"strings"
)

// Locale is the (language, country) pair the catalog's localeLanguage and
// localeCountry keys hold. Go has no standard-library locale database to
// validate or construct one against, so Locale is a plain value type and
// resolution is a best-effort lookup against the host environment.
type Locale struct {
	Language string
	Country  string
}

// HostLocale derives a default locale from the process environment (LANG
// or LC_ALL, e.g. "en_US.UTF-8"), falling back to en_US if neither is set
// or parseable. This stands in for the host-default locale a JVM always
// manages to construct, which spec-wise is what localeLanguage/
// localeCountry fall back to when the stored values are empty or invalid.
func HostLocale() Locale {
	v := os.Getenv("LANG")
	if v == "" {
		v = os.Getenv("LC_ALL")
	}
	lang, country := parseLocaleEnv(v)
	if lang == "" {
		lang = "en"
	}
	if country == "" {
		country = "US"
	}
	return Locale{Language: lang, Country: country}
}

func parseLocaleEnv(v string) (lang, country string) {
	v, _, _ = strings.Cut(v, ".") // drop encoding, e.g. "en_US.UTF-8" -> "en_US"
	v, _, _ = strings.Cut(v, "@") // drop modifier, e.g. "ca_ES@euro"
	lang, country, _ = strings.Cut(v, "_")
	return strings.ToLower(lang), strings.ToUpper(country)
}

// ResolveLocale validates the stored language/country pair and, if it
// doesn't look like a real locale tag, logs the failure and substitutes
// HostLocale() — mirroring a lenient Locale constructor that never lets a
// bad stored value prevent the catalog from loading.
func ResolveLocale(language, country string, logger Logger) Locale {
	if !isValidLanguageTag(language) {
		host := HostLocale()
		logger.Errorf("atomicconfig: invalid locale language %q, falling back to host default %s_%s", language, host.Language, host.Country)
		return host
	}
	return Locale{Language: language, Country: country}
}

func isValidLanguageTag(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
