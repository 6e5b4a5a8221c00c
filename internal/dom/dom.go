// Package dom defines the UI-binding context the site components run against.
//
// Components never touch browser globals directly. They receive a Document at
// construction and register listeners through it; every registration can be
// detached again, so a component can be torn down and mounted afresh without
// leaking handlers. The browser build binds these interfaces to syscall/js
// (package jsdom); tests use the in-memory implementation in package htmldom.
package dom

import "sync"

// EventType names a DOM event.
type EventType string

const (
	// Click is fired when an element is activated.
	Click EventType = "click"
	// Scroll is fired on the window when the viewport scrolls.
	Scroll EventType = "scroll"
	// Submit is fired on a form before it is sent.
	Submit EventType = "submit"
	// Change is fired when a form control commits a new value.
	Change EventType = "change"
)

// Event is the payload delivered to a Handler.
type Event interface {
	Type() EventType
	// Target returns the element the event was dispatched to, or nil for window events.
	Target() Element
	PreventDefault()
}

// Handler reacts to an Event. Handlers run on the UI event loop and must not block.
type Handler func(Event)

// Registration is returned by every listener registration.
type Registration interface {
	// Detach removes the listener. Calling it more than once is a no-op.
	Detach()
}

// Element is a single node of the document tree.
type Element interface {
	// Tag returns the lower-case tag name.
	Tag() string
	ID() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)

	AddClass(names ...string)
	RemoveClass(names ...string)
	HasClass(name string) bool
	// ToggleClass flips membership of name and reports whether it is now present.
	ToggleClass(name string) bool

	// Style returns the inline value of a CSS property.
	Style(property string) string
	SetStyle(property, value string)

	Text() string
	SetText(text string)
	// HTML returns the inner markup.
	HTML() string
	SetHTML(markup string)

	// Value is the current value of a form control.
	Value() string
	SetValue(value string)
	Disabled() bool
	SetDisabled(disabled bool)
	// Reset restores every control of a form to its default value.
	Reset()

	// Query returns the first descendant matching selector, or nil.
	Query(selector string) Element
	QueryAll(selector string) []Element
	Append(child Element)
	// Clear removes every child node.
	Clear()

	On(event EventType, h Handler) Registration
}

// Document is the injected replacement for the browser's document and window.
type Document interface {
	// ByID returns the element with the given id, or nil.
	ByID(id string) Element
	Query(selector string) Element
	QueryAll(selector string) []Element
	Create(tag string) Element
	// Root returns the <html> element.
	Root() Element
	Body() Element

	// ScrollY is the vertical scroll offset of the window in CSS pixels.
	ScrollY() float64
	// OnWindow registers a listener on the window.
	OnWindow(event EventType, h Handler) Registration

	// Alert shows a blocking message to the user.
	Alert(message string)
	SetCookie(name, value string)

	// Ready runs fn once the document has finished parsing.
	Ready(fn func())
}

// RegistrationFunc adapts a function to the Registration interface.
type RegistrationFunc func()

// Detach implements Registration.
func (f RegistrationFunc) Detach() {
	if f != nil {
		f()
	}
}

// Once wraps fn so that only the first Detach call runs it.
func Once(fn func()) Registration {
	var once sync.Once
	return RegistrationFunc(func() { once.Do(fn) })
}

// Group collects registrations so a component can detach them together.
type Group struct {
	regs []Registration
}

// Add stores r. Nil registrations are ignored.
func (g *Group) Add(r Registration) {
	if r == nil {
		return
	}
	g.regs = append(g.regs, r)
}

// Detach releases every stored registration and empties the group.
func (g *Group) Detach() {
	for _, r := range g.regs {
		r.Detach()
	}
	g.regs = nil
}

// Len reports the number of live registrations.
func (g *Group) Len() int { return len(g.regs) }
