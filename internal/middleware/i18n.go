package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey stores the negotiated language.Tag.
var LocaleKey = localeContextKey{}

// DefaultLocale is used when neither configuration nor the request names a usable locale.
var DefaultLocale = language.MustParse("en-IN")

var extraLocales = []language.Tag{DefaultLocale, language.English, language.Hindi}

// CountryLookup resolves an ISO country code for a client IP.
type CountryLookup func(ip string) (string, error)

// I18N negotiates the response locale from X-Locale, then Accept-Language,
// then the client's country when lookup is set, against the configured
// default plus en-IN, English and Hindi.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	supported := supportedLocales(defaultLocale)
	matcher := language.NewMatcher(supported)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, matcher, supported, lookup)
			w.Header().Set("Content-Language", locale.String())
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func supportedLocales(defaultLocale string) []language.Tag {
	def, err := language.Parse(strings.TrimSpace(defaultLocale))
	if err != nil || def == language.Und {
		def = DefaultLocale
	}
	tags := []language.Tag{def}
	for _, t := range extraLocales {
		if t != def {
			tags = append(tags, t)
		}
	}
	return tags
}

// detectLocale returns supported[0] when nothing in the request matches.
func detectLocale(r *http.Request, matcher language.Matcher, supported []language.Tag, lookup CountryLookup) language.Tag {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if t, err := language.Parse(v); err == nil {
			if _, idx, conf := matcher.Match(t); conf != language.No {
				return supported[idx]
			}
		}
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		if tags, _, err := language.ParseAcceptLanguage(v); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx]
			}
		}
	}
	if lookup != nil {
		if country, err := lookup(clientIP(r)); err == nil && country != "" {
			if region, err := language.ParseRegion(country); err == nil {
				if t, err := language.Compose(language.English, region); err == nil {
					if _, idx, conf := matcher.Match(t); conf != language.No {
						return supported[idx]
					}
				}
			}
		}
	}
	return supported[0]
}

func LocaleFromContext(ctx context.Context) language.Tag {
	if v, ok := ctx.Value(LocaleKey).(language.Tag); ok {
		return v
	}
	return DefaultLocale
}
