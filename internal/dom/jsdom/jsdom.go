//go:build js && wasm

package jsdom

import (
	"net/url"
	"strings"
	"syscall/js"

	"finitefield.org/heara-web/internal/dom"
)

const cookieMaxAge = "31536000"

// Document wraps the global document and window objects.
type Document struct {
	doc js.Value
	win js.Value
}

var _ dom.Document = (*Document)(nil)

// New binds to the page the program was loaded into.
func New() *Document {
	return &Document{
		doc: js.Global().Get("document"),
		win: js.Global(),
	}
}

// Origin returns window.location.origin, the base URL of the REST collaborator.
func Origin() string {
	return js.Global().Get("location").Get("origin").String()
}

func wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &element{v: v}
}

func wrapList(list js.Value) []dom.Element {
	n := list.Length()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, wrap(list.Index(i)))
	}
	return out
}

func (d *Document) ByID(id string) dom.Element {
	return wrap(d.doc.Call("getElementById", id))
}

func (d *Document) Query(selector string) dom.Element {
	return wrap(d.doc.Call("querySelector", selector))
}

func (d *Document) QueryAll(selector string) []dom.Element {
	return wrapList(d.doc.Call("querySelectorAll", selector))
}

func (d *Document) Create(tag string) dom.Element {
	return wrap(d.doc.Call("createElement", tag))
}

func (d *Document) Root() dom.Element { return wrap(d.doc.Get("documentElement")) }

func (d *Document) Body() dom.Element { return wrap(d.doc.Get("body")) }

func (d *Document) ScrollY() float64 { return d.win.Get("scrollY").Float() }

func (d *Document) OnWindow(event dom.EventType, h dom.Handler) dom.Registration {
	return listen(d.win, event, h)
}

func (d *Document) Alert(message string) {
	d.win.Call("alert", message)
}

func (d *Document) SetCookie(name, value string) {
	d.doc.Set("cookie", name+"="+url.QueryEscape(value)+"; path=/; max-age="+cookieMaxAge+"; samesite=lax")
}

func (d *Document) Ready(fn func()) {
	if d.doc.Get("readyState").String() != "loading" {
		fn()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("once", true)
	d.doc.Call("addEventListener", "DOMContentLoaded", cb, opts)
}

func listen(target js.Value, event dom.EventType, h dom.Handler) dom.Registration {
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			h(&jsEvent{v: args[0]})
		}
		return nil
	})
	target.Call("addEventListener", string(event), fn)
	return dom.Once(func() {
		target.Call("removeEventListener", string(event), fn)
		fn.Release()
	})
}

type jsEvent struct {
	v js.Value
}

func (e *jsEvent) Type() dom.EventType { return dom.EventType(e.v.Get("type").String()) }

func (e *jsEvent) Target() dom.Element {
	t := e.v.Get("target")
	if t.IsUndefined() || t.IsNull() || t.Get("tagName").IsUndefined() {
		return nil
	}
	return wrap(t)
}

func (e *jsEvent) PreventDefault() { e.v.Call("preventDefault") }

type element struct {
	v js.Value
}

func (e *element) Tag() string { return strings.ToLower(e.v.Get("tagName").String()) }

func (e *element) ID() string { return e.v.Get("id").String() }

func (e *element) Attr(name string) (string, bool) {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return "", false
	}
	return v.String(), true
}

func (e *element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

func (e *element) AddClass(names ...string) {
	list := e.v.Get("classList")
	for _, n := range names {
		list.Call("add", n)
	}
}

func (e *element) RemoveClass(names ...string) {
	list := e.v.Get("classList")
	for _, n := range names {
		list.Call("remove", n)
	}
}

func (e *element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *element) ToggleClass(name string) bool {
	return e.v.Get("classList").Call("toggle", name).Bool()
}

func (e *element) Style(property string) string {
	return e.v.Get("style").Call("getPropertyValue", property).String()
}

func (e *element) SetStyle(property, value string) {
	e.v.Get("style").Call("setProperty", property, value)
}

func (e *element) Text() string { return e.v.Get("textContent").String() }

func (e *element) SetText(text string) { e.v.Set("textContent", text) }

func (e *element) HTML() string { return e.v.Get("innerHTML").String() }

func (e *element) SetHTML(markup string) { e.v.Set("innerHTML", markup) }

func (e *element) Value() string {
	v := e.v.Get("value")
	if v.IsUndefined() || v.IsNull() {
		return ""
	}
	return v.String()
}

func (e *element) SetValue(value string) { e.v.Set("value", value) }

func (e *element) Disabled() bool { return e.v.Get("disabled").Truthy() }

func (e *element) SetDisabled(disabled bool) { e.v.Set("disabled", disabled) }

func (e *element) Reset() {
	if fn := e.v.Get("reset"); fn.Type() == js.TypeFunction {
		e.v.Call("reset")
	}
}

func (e *element) Query(selector string) dom.Element {
	return wrap(e.v.Call("querySelector", selector))
}

func (e *element) QueryAll(selector string) []dom.Element {
	return wrapList(e.v.Call("querySelectorAll", selector))
}

func (e *element) Append(child dom.Element) {
	c, ok := child.(*element)
	if !ok || c == nil {
		return
	}
	e.v.Call("appendChild", c.v)
}

func (e *element) Clear() { e.v.Call("replaceChildren") }

func (e *element) On(event dom.EventType, h dom.Handler) dom.Registration {
	return listen(e.v, event, h)
}
