// Package site contains the interactive components of the landing page and
// the admin lead view.
//
// Every component receives a Runtime at construction, binds itself to the
// document in Mount and releases every listener in Unmount. Mount reports
// false, attaching nothing, when the element the component anchors on is
// absent from the page.
package site

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/dom"
)

// ErrNoTarget is returned by operations invoked while their anchor element is missing.
var ErrNoTarget = errors.New("site: anchor element not found")

// Component is a unit of page behaviour with an explicit lifecycle.
type Component interface {
	Mount() bool
	Unmount()
}

// Runtime carries the host services shared by all components.
type Runtime struct {
	Doc    dom.Document
	Logger *zap.Logger
	// Spawn runs fn off the event loop. Nil runs fn inline.
	Spawn func(fn func())
	// Context bounds network calls started by event handlers. Nil means
	// context.Background.
	Context context.Context
}

// Inline runs fn on the caller's goroutine.
func Inline(fn func()) { fn() }

// Goroutine runs fn on a new goroutine. The browser build uses it so that
// event handlers never block on fetch.
func Goroutine(fn func()) { go fn() }

func (rt Runtime) logger(component string) *zap.Logger {
	l := rt.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.String("component", component))
}

func (rt Runtime) spawn(fn func()) {
	if rt.Spawn == nil {
		fn()
		return
	}
	rt.Spawn(fn)
}

func (rt Runtime) ctx() context.Context {
	if rt.Context == nil {
		return context.Background()
	}
	return rt.Context
}

// Translator resolves user-facing strings in the active locale.
type Translator interface {
	Lang() string
	T(key string) string
}

// label resolves key, falling back to fallback when the dictionaries lack it.
func label(tr Translator, key, fallback string) string {
	if tr == nil {
		return fallback
	}
	if v := tr.T(key); v != "" && v != key {
		return v
	}
	return fallback
}

func langOf(tr Translator) string {
	if tr == nil {
		return ""
	}
	return tr.Lang()
}
