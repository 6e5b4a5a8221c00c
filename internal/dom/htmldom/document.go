// Package htmldom implements dom.Document over a parsed HTML tree.
//
// It is the in-process stand-in for the browser: selectors are evaluated by
// goquery, events are dispatched explicitly with Dispatch or ScrollTo, and
// alerts and cookies are recorded for inspection. A Document is not safe for
// concurrent use; drive it from a single goroutine.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"finitefield.org/heara-web/internal/dom"
)

// Document is an in-memory dom.Document.
type Document struct {
	doc       *goquery.Document
	listeners map[*html.Node][]*listener
	window    []*listener
	values    map[*html.Node]string
	scrollY   float64
	alerts    []string
	cookies   map[string]string
}

type listener struct {
	event   dom.EventType
	handler dom.Handler
	removed bool
}

var _ dom.Document = (*Document)(nil)

// Parse builds a Document from an HTML payload.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	return &Document{
		doc:       doc,
		listeners: make(map[*html.Node][]*listener),
		values:    make(map[*html.Node]string),
		cookies:   make(map[string]string),
	}, nil
}

// MustParse parses markup and panics on error. Intended for tests and fixtures.
func MustParse(markup string) *Document {
	d, err := Parse(strings.NewReader(markup))
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Document) wrap(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &element{doc: d, node: n}
}

func (d *Document) wrapAll(sel *goquery.Selection) []dom.Element {
	out := make([]dom.Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

func first(sel *goquery.Selection) *html.Node {
	if sel.Length() == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// ByID implements dom.Document.
func (d *Document) ByID(id string) dom.Element {
	return d.wrap(first(d.doc.Find(fmt.Sprintf("[id=%q]", id))))
}

// Query implements dom.Document.
func (d *Document) Query(selector string) dom.Element {
	return d.wrap(first(d.doc.Find(selector)))
}

// QueryAll implements dom.Document.
func (d *Document) QueryAll(selector string) []dom.Element {
	return d.wrapAll(d.doc.Find(selector))
}

// Create implements dom.Document. The element is detached until appended.
func (d *Document) Create(tag string) dom.Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// Root implements dom.Document.
func (d *Document) Root() dom.Element {
	return d.Query("html")
}

// Body implements dom.Document.
func (d *Document) Body() dom.Element {
	return d.Query("body")
}

// ScrollY implements dom.Document.
func (d *Document) ScrollY() float64 { return d.scrollY }

// OnWindow implements dom.Document.
func (d *Document) OnWindow(event dom.EventType, h dom.Handler) dom.Registration {
	l := &listener{event: event, handler: h}
	d.window = append(d.window, l)
	return dom.Once(func() {
		l.removed = true
		d.window = without(d.window, l)
	})
}

// Alert implements dom.Document by recording the message.
func (d *Document) Alert(message string) {
	d.alerts = append(d.alerts, message)
}

// SetCookie implements dom.Document.
func (d *Document) SetCookie(name, value string) {
	d.cookies[name] = value
}

// Ready implements dom.Document. A parsed document is always ready.
func (d *Document) Ready(fn func()) {
	if fn != nil {
		fn()
	}
}

// ScrollTo moves the viewport and fires the window scroll listeners.
func (d *Document) ScrollTo(y float64) {
	d.scrollY = y
	ev := &event{typ: dom.Scroll}
	for _, l := range snapshot(d.window) {
		if l.event == dom.Scroll && !l.removed {
			l.handler(ev)
		}
	}
}

// Dispatch fires typ on target and reports whether a handler prevented the default action.
func (d *Document) Dispatch(target dom.Element, typ dom.EventType) bool {
	n := nodeOf(target)
	if n == nil {
		return false
	}
	ev := &event{typ: typ, target: target}
	for _, l := range snapshot(d.listeners[n]) {
		if l.event == typ && !l.removed {
			l.handler(ev)
		}
	}
	return ev.prevented
}

// Click dispatches a click event on target.
func (d *Document) Click(target dom.Element) bool {
	return d.Dispatch(target, dom.Click)
}

// ListenerCount reports how many listeners are attached to target.
func (d *Document) ListenerCount(target dom.Element) int {
	return len(d.listeners[nodeOf(target)])
}

// WindowListenerCount reports how many listeners are attached to the window.
func (d *Document) WindowListenerCount() int {
	return len(d.window)
}

// Alerts returns the messages shown so far.
func (d *Document) Alerts() []string {
	out := make([]string, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// LastAlert returns the most recent message, or "" when none was shown.
func (d *Document) LastAlert() string {
	if len(d.alerts) == 0 {
		return ""
	}
	return d.alerts[len(d.alerts)-1]
}

// Cookie returns a cookie set through SetCookie.
func (d *Document) Cookie(name string) (string, bool) {
	v, ok := d.cookies[name]
	return v, ok
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

func (d *Document) addListener(n *html.Node, event dom.EventType, h dom.Handler) dom.Registration {
	l := &listener{event: event, handler: h}
	d.listeners[n] = append(d.listeners[n], l)
	return dom.Once(func() {
		l.removed = true
		rest := without(d.listeners[n], l)
		if len(rest) == 0 {
			delete(d.listeners, n)
			return
		}
		d.listeners[n] = rest
	})
}

func snapshot(ls []*listener) []*listener {
	out := make([]*listener, len(ls))
	copy(out, ls)
	return out
}

func without(ls []*listener, target *listener) []*listener {
	out := ls[:0:0]
	for _, l := range ls {
		if l != target {
			out = append(out, l)
		}
	}
	return out
}

func nodeOf(el dom.Element) *html.Node {
	e, ok := el.(*element)
	if !ok || e == nil {
		return nil
	}
	return e.node
}

type event struct {
	typ       dom.EventType
	target    dom.Element
	prevented bool
}

func (e *event) Type() dom.EventType { return e.typ }
func (e *event) Target() dom.Element { return e.target }
func (e *event) PreventDefault() { e.prevented = true }
