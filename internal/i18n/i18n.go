// Package i18n holds the translation dictionaries for the landing page and the
// admin view.
//
// Dictionaries are YAML files named <locale>.yaml. Nested maps are flattened
// into dotted keys ("form.submit"). Values are inline Markdown: the bundle keeps
// the raw string, a sanitised HTML rendering for element content, and that
// rendering stripped to plain text for attributes such as placeholders.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	stdhtml "html"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	English = "en"
	Hebrew  = "he"

	// DefaultLocale is used when nothing else selects a locale.
	DefaultLocale = English
)

//go:embed locales/*.yaml
var embedded embed.FS

var rtlBases = map[string]struct{}{
	"he": {},
	"ar": {},
	"fa": {},
	"ur": {},
}

// Bundle is an immutable set of dictionaries.
type Bundle struct {
	raw       map[string]map[string]string
	html      map[string]map[string]string
	text      map[string]map[string]string
	fallback  string
	supported []string
	matcher   language.Matcher
	order     []string
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
	defaultErr    error
)

// Locales returns the embedded dictionary files.
func Locales() (fs.FS, error) {
	return fs.Sub(embedded, "locales")
}

// Default returns the bundle built from the embedded dictionaries.
func Default() (*Bundle, error) {
	defaultOnce.Do(func() {
		sub, err := Locales()
		if err != nil {
			defaultErr = err
			return
		}
		defaultBundle, defaultErr = Load(sub, DefaultLocale, []string{English, Hebrew})
	})
	return defaultBundle, defaultErr
}

// MustDefault is Default for program start-up.
func MustDefault() *Bundle {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}

// Load reads <locale>.yaml for every supported locale from fsys. Only the
// fallback dictionary is mandatory.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{English, Hebrew}
	}
	b := &Bundle{
		raw:      map[string]map[string]string{},
		html:     map[string]map[string]string{},
		text:     map[string]map[string]string{},
		fallback: fallback,
	}

	md := goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))
	policy := sanitizer()
	strict := bluemonday.StrictPolicy()

	for _, l := range supported {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || contains(b.supported, l) {
			continue
		}
		b.supported = append(b.supported, l)

		data, err := fs.ReadFile(fsys, l+".yaml")
		if err != nil {
			// allow missing file for non-default locales
			if l == fallback {
				return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
			}
			continue
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		raw := map[string]string{}
		if err := flatten("", tree, raw); err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", l, err)
		}
		rendered := make(map[string]string, len(raw))
		plain := make(map[string]string, len(raw))
		for key, value := range raw {
			out, err := renderInline(md, policy, value)
			if err != nil {
				return nil, fmt.Errorf("i18n: render %s/%s: %w", l, key, err)
			}
			rendered[key] = out
			plain[key] = stdhtml.UnescapeString(strict.Sanitize(out))
		}
		b.raw[l] = raw
		b.html[l] = rendered
		b.text[l] = plain
	}
	if _, ok := b.raw[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}

	// The matcher treats its first tag as the default.
	b.order = append([]string{fallback}, without(b.supported, fallback)...)
	tags := make([]language.Tag, 0, len(b.order))
	for _, l := range b.order {
		tags = append(tags, language.Make(l))
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func sanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("span", "br")
	p.AllowAttrs("class").OnElements("span", "strong", "em")
	return p
}

func renderInline(md goldmark.Markdown, policy *bluemonday.Policy, src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	out := strings.TrimSpace(buf.String())
	if strings.Count(out, "<p>") == 1 && strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return policy.Sanitize(out), nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case string:
			out[key] = val
		case nil:
			out[key] = ""
		case bool, int, float64:
			out[key] = fmt.Sprint(val)
		default:
			return fmt.Errorf("key %s: unsupported value %T", key, v)
		}
	}
	return nil
}

// Supported lists the configured locales in sorted order.
func (b *Bundle) Supported() []string {
	out := append([]string(nil), b.supported...)
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang names a configured locale.
func (b *Bundle) IsSupported(lang string) bool {
	return contains(b.supported, lang)
}

// Normalize maps a language tag such as "he-IL" onto a supported locale,
// or the fallback when none matches.
func (b *Bundle) Normalize(lang string) string {
	base := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(base, "-_"); i != -1 {
		base = base[:i]
	}
	if base == "iw" {
		base = Hebrew
	}
	if b.IsSupported(base) {
		return base
	}
	return b.fallback
}

// Other returns the locale after lang in the toggle cycle.
func (b *Bundle) Other(lang string) string {
	lang = b.Normalize(lang)
	for i, l := range b.order {
		if l == lang {
			return b.order[(i+1)%len(b.order)]
		}
	}
	return b.fallback
}

// Lookup returns the raw string for key in lang only.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	v, ok := b.raw[lang][key]
	return v, ok
}

// LookupHTML returns the sanitised HTML rendering of key in lang only.
func (b *Bundle) LookupHTML(lang, key string) (string, bool) {
	v, ok := b.html[lang][key]
	return v, ok
}

// LookupText returns the plain-text rendering of key in lang only: Markdown
// and markup removed, entities decoded.
func (b *Bundle) LookupText(lang, key string) (string, bool) {
	v, ok := b.text[lang][key]
	return v, ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.Lookup(lang, key); ok {
		return v
	}
	if v, ok := b.Lookup(b.fallback, key); ok {
		return v
	}
	return key
}

// HTML is T for the rendered dictionary. The key itself is returned escaped.
func (b *Bundle) HTML(lang, key string) string {
	if v, ok := b.LookupHTML(lang, key); ok {
		return v
	}
	if v, ok := b.LookupHTML(b.fallback, key); ok {
		return v
	}
	return bluemonday.StrictPolicy().Sanitize(key)
}

// Text is T for the plain-text rendering.
func (b *Bundle) Text(lang, key string) string {
	if v, ok := b.LookupText(lang, key); ok {
		return v
	}
	if v, ok := b.LookupText(b.fallback, key); ok {
		return v
	}
	return key
}

// Resolve chooses best language from Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(b.order) {
		return b.fallback
	}
	return b.order[idx]
}

// Direction returns the text direction of lang: "rtl" or "ltr".
func Direction(lang string) string {
	base := strings.ToLower(lang)
	if i := strings.IndexAny(base, "-_"); i != -1 {
		base = base[:i]
	}
	if _, ok := rtlBases[base]; ok || base == "iw" {
		return "rtl"
	}
	return "ltr"
}

// MissingKey is a key defined by the fallback dictionary but absent from Locale.
type MissingKey struct {
	Locale string
	Key    string
}

// Missing reports keys that a supported locale lacks relative to the
// fallback, sorted by locale then key.
func (b *Bundle) Missing() []MissingKey {
	var out []MissingKey
	for _, l := range b.supported {
		if l == b.fallback {
			continue
		}
		dict := b.raw[l]
		for key := range b.raw[b.fallback] {
			if _, ok := dict[key]; !ok {
				out = append(out, MissingKey{Locale: l, Key: key})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Locale == out[j].Locale {
			return out[i].Key < out[j].Key
		}
		return out[i].Locale < out[j].Locale
	})
	return out
}

// Keys lists every key of lang in sorted order.
func (b *Bundle) Keys(lang string) []string {
	out := make([]string, 0, len(b.raw[lang]))
	for k := range b.raw[lang] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
