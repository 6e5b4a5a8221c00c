package middleware

import (
	"net/http"
	"strings"
	"time"

	"finitefield.org/heara-web/internal/i18n"
)

// LocaleCookie is the cookie holding the visitor's explicit locale choice.
// The in-page language toggle writes the same cookie.
const LocaleCookie = "hl"

const localeCookieMaxAge = 365 * 24 * time.Hour

// Locale resolves the request locale from the hl query parameter, the hl
// cookie, then Accept-Language. A query override is persisted in the cookie.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var lang string
			if q := strings.TrimSpace(r.URL.Query().Get("hl")); q != "" {
				lang = bundle.Normalize(q)
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   int(localeCookieMaxAge.Seconds()),
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(LocaleCookie); err == nil && c.Value != "" {
				lang = bundle.Normalize(c.Value)
			} else {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")
			w.Header().Add("Vary", "Cookie")
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), lang)))
		})
	}
}

// Lang returns the request locale, or fallback when the Locale middleware did not run.
func Lang(r *http.Request, fallback string) string {
	if lang, ok := LocaleFromContext(r.Context()); ok {
		return lang
	}
	return fallback
}
