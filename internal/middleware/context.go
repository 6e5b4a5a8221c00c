package middleware

import "context"

// context keys are unexported to avoid collisions
type ctxKey string

const ctxKeyLocale ctxKey = "locale"

// WithLocale stores the resolved locale in ctx.
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, lang)
}

// LocaleFromContext returns the locale stored by the Locale middleware.
func LocaleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyLocale).(string)
	return v, ok && v != ""
}
