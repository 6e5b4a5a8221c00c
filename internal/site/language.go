package site

import (
	"slices"
	"strings"

	"finitefield.org/heara-web/internal/dom"
	"finitefield.org/heara-web/internal/i18n"
)

// LocaleCookie persists the chosen locale for server-side rendering.
const LocaleCookie = "hl"

// LanguageManager switches the page between the bundle's locales. It also
// serves as the Translator for the other components.
type LanguageManager struct {
	rt        Runtime
	bundle    *i18n.Bundle
	lang      string
	regs      dom.Group
	listeners []*func(string)

	// start is the locale found at Mount. startLang and startDir hold the
	// root attributes as authored so a round trip restores them verbatim.
	start     string
	startLang string
	startDir  string
}

var (
	_ Component  = (*LanguageManager)(nil)
	_ Translator = (*LanguageManager)(nil)
)

func NewLanguageManager(rt Runtime, bundle *i18n.Bundle) *LanguageManager {
	return &LanguageManager{rt: rt, bundle: bundle, lang: bundle.Fallback()}
}

// Mount reads the initial locale from <html lang> and binds the toggles.
func (l *LanguageManager) Mount() bool {
	l.regs.Detach()
	root := l.rt.Doc.Root()
	if root == nil {
		return false
	}
	lang, _ := root.Attr("lang")
	l.lang = l.bundle.Normalize(lang)
	l.start = l.lang
	l.startLang = lang
	l.startDir, _ = root.Attr("dir")

	for _, toggle := range l.rt.Doc.QueryAll(".lang-toggle") {
		l.regs.Add(toggle.On(dom.Click, func(ev dom.Event) {
			ev.PreventDefault()
			l.Toggle()
		}))
	}
	l.updateToggles()
	return true
}

func (l *LanguageManager) Unmount() {
	l.regs.Detach()
}

// Lang implements Translator.
func (l *LanguageManager) Lang() string { return l.lang }

// T implements Translator.
func (l *LanguageManager) T(key string) string { return l.bundle.T(l.lang, key) }

// Toggle switches to the other locale.
func (l *LanguageManager) Toggle() {
	l.SetLanguage(l.bundle.Other(l.lang))
}

// SetLanguage applies lang to the document. Elements whose key the target
// dictionary lacks keep their current content.
func (l *LanguageManager) SetLanguage(lang string) {
	lang = l.bundle.Normalize(lang)
	l.lang = lang

	if root := l.rt.Doc.Root(); root != nil {
		attrLang, attrDir := lang, i18n.Direction(lang)
		if lang == l.start && l.startLang != "" {
			attrLang = l.startLang
			if l.startDir != "" {
				attrDir = l.startDir
			}
		}
		root.SetAttr("dir", attrDir)
		root.SetAttr("lang", attrLang)
	}

	for _, el := range l.rt.Doc.QueryAll("[data-i18n]") {
		key, _ := el.Attr("data-i18n")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		switch el.Tag() {
		case "input", "textarea":
			if v, ok := l.bundle.LookupText(lang, key); ok {
				el.SetAttr("placeholder", v)
			}
		default:
			if v, ok := l.bundle.LookupHTML(lang, key); ok {
				el.SetHTML(v)
			}
		}
	}

	l.updateToggles()
	l.rt.Doc.SetCookie(LocaleCookie, lang)

	for _, fn := range slices.Clone(l.listeners) {
		(*fn)(lang)
	}
}

// OnChange registers fn to run after every locale switch.
func (l *LanguageManager) OnChange(fn func(lang string)) dom.Registration {
	ref := &fn
	l.listeners = append(l.listeners, ref)
	return dom.Once(func() {
		out := l.listeners[:0:0]
		for _, r := range l.listeners {
			if r != ref {
				out = append(out, r)
			}
		}
		l.listeners = out
	})
}

func (l *LanguageManager) updateToggles() {
	code := strings.ToUpper(l.bundle.Other(l.lang))
	for _, toggle := range l.rt.Doc.QueryAll(".lang-toggle") {
		toggle.SetText(code)
	}
}
