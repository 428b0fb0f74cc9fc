package provider

import (
	"maps"
	"slices"
	"strings"

	"github.com/poiesic/newsimport/core"
	"golang.org/x/text/language"
)

// languages are the article languages the provider accepts.
var languages = map[string]string{
	"ar": "ar",
	"de": "de",
	"en": "en",
	"es": "es",
	"fr": "fr",
	"he": "he",
	"it": "it",
	"nl": "nl",
	"no": "no",
	"pt": "pt",
	"ru": "ru",
	"sv": "sv",
	"zh": "zh",
}

// countries are the headline countries the provider accepts.
var countries = map[string]string{
	"ae": "ae", "ar": "ar", "at": "at", "au": "au", "be": "be", "bg": "bg",
	"br": "br", "ca": "ca", "ch": "ch", "cn": "cn", "co": "co", "cu": "cu",
	"cz": "cz", "de": "de", "eg": "eg", "fr": "fr", "gb": "gb", "gr": "gr",
	"hk": "hk", "hu": "hu", "id": "id", "ie": "ie", "il": "il", "in": "in",
	"it": "it", "jp": "jp", "kr": "kr", "lt": "lt", "lv": "lv", "ma": "ma",
	"mx": "mx", "my": "my", "ng": "ng", "nl": "nl", "no": "no", "nz": "nz",
	"ph": "ph", "pl": "pl", "pt": "pt", "ro": "ro", "rs": "rs", "ru": "ru",
	"sa": "sa", "se": "se", "sg": "sg", "si": "si", "sk": "sk", "th": "th",
	"tr": "tr", "tw": "tw", "ua": "ua", "us": "us", "ve": "ve", "za": "za",
}

// categories are the headline categories the provider accepts.
var categories = map[string]string{
	"business":      "business",
	"entertainment": "entertainment",
	"general":       "general",
	"health":        "health",
	"science":       "science",
	"sports":        "sports",
	"technology":    "technology",
}

func lookup(table map[string]string, key string) (string, bool) {
	v, ok := table[strings.ToLower(strings.TrimSpace(key))]
	return v, ok
}

// LookupLanguage returns the provider code for a language key.
// Keys match case-insensitively, so both "en" and "EN" resolve.
// BCP 47 tags such as "en-GB" resolve to their base language.
func LookupLanguage(key string) (string, error) {
	if code, ok := lookup(languages, key); ok {
		return code, nil
	}
	if tag, err := language.Parse(strings.TrimSpace(key)); err == nil {
		base, _ := tag.Base()
		if code, ok := lookup(languages, base.String()); ok {
			return code, nil
		}
	}
	return "", core.ConfigError(core.ErrUnknownLanguage, "language %q", key)
}

// LookupCountry returns the provider code for a country key.
func LookupCountry(key string) (string, error) {
	if code, ok := lookup(countries, key); ok {
		return code, nil
	}
	return "", core.ConfigError(core.ErrUnknownCountry, "country %q", key)
}

// LookupCategory returns the provider name for a category key.
func LookupCategory(key string) (string, error) {
	if name, ok := lookup(categories, key); ok {
		return name, nil
	}
	return "", core.ConfigError(core.ErrUnknownCategory, "category %q", key)
}

// Languages returns the supported language codes, sorted.
func Languages() []string {
	return slices.Sorted(maps.Values(languages))
}

// Countries returns the supported country codes, sorted.
func Countries() []string {
	return slices.Sorted(maps.Values(countries))
}

// Categories returns the supported category names, sorted.
func Categories() []string {
	return slices.Sorted(maps.Values(categories))
}
