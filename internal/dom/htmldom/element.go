package htmldom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"finitefield.org/heara-web/internal/dom"
)

type element struct {
	doc  *Document
	node *html.Node
}

var _ dom.Element = (*element)(nil)

func (e *element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

func (e *element) Tag() string { return strings.ToLower(e.node.Data) }

func (e *element) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *element) removeAttr(name string) {
	out := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		out = append(out, a)
	}
	e.node.Attr = out
}

func (e *element) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *element) setClasses(names []string) {
	e.SetAttr("class", strings.Join(names, " "))
}

func (e *element) AddClass(names ...string) {
	current := e.classes()
	for _, name := range names {
		if !contains(current, name) {
			current = append(current, name)
		}
	}
	e.setClasses(current)
}

func (e *element) RemoveClass(names ...string) {
	current := e.classes()
	out := current[:0]
	for _, c := range current {
		if !contains(names, c) {
			out = append(out, c)
		}
	}
	e.setClasses(out)
}

func (e *element) HasClass(name string) bool {
	return contains(e.classes(), name)
}

func (e *element) ToggleClass(name string) bool {
	if e.HasClass(name) {
		e.RemoveClass(name)
		return false
	}
	e.AddClass(name)
	return true
}

func (e *element) Style(property string) string {
	for _, decl := range parseStyle(e.node) {
		if decl[0] == property {
			return decl[1]
		}
	}
	return ""
}

func (e *element) SetStyle(property, value string) {
	decls := parseStyle(e.node)
	replaced := false
	for i := range decls {
		if decls[i][0] == property {
			decls[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{property, value})
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	e.SetAttr("style", strings.Join(parts, "; "))
}

func parseStyle(n *html.Node) [][2]string {
	var raw string
	for _, a := range n.Attr {
		if a.Key == "style" {
			raw = a.Val
		}
	}
	var out [][2]string
	for _, decl := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		out = append(out, [2]string{prop, strings.TrimSpace(val)})
	}
	return out
}

func (e *element) Text() string { return e.sel().Text() }

func (e *element) SetText(text string) { e.sel().SetText(text) }

func (e *element) HTML() string {
	markup, err := e.sel().Html()
	if err != nil {
		return ""
	}
	return markup
}

func (e *element) SetHTML(markup string) { e.sel().SetHtml(markup) }

// Value mirrors the browser split between a control's default value (markup)
// and its live value (user input, SetValue).
func (e *element) Value() string {
	if v, ok := e.doc.values[e.node]; ok {
		return v
	}
	return e.defaultValue()
}

func (e *element) defaultValue() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		options := e.sel().Find("option")
		chosen := options.FilterFunction(func(_ int, s *goquery.Selection) bool {
			_, ok := s.Attr("selected")
			return ok
		})
		if chosen.Length() == 0 {
			chosen = options
		}
		if chosen.Length() == 0 {
			return ""
		}
		opt := chosen.First()
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return opt.Text()
	default:
		v, _ := e.Attr("value")
		return v
	}
}

func (e *element) SetValue(value string) { e.doc.values[e.node] = value }

func (e *element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

func (e *element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.removeAttr("disabled")
}

func (e *element) Reset() {
	delete(e.doc.values, e.node)
	for _, n := range e.sel().Find("input, textarea, select").Nodes {
		delete(e.doc.values, n)
	}
}

func (e *element) Query(selector string) dom.Element {
	return e.doc.wrap(first(e.sel().Find(selector)))
}

func (e *element) QueryAll(selector string) []dom.Element {
	return e.doc.wrapAll(e.sel().Find(selector))
}

func (e *element) Append(child dom.Element) {
	n := nodeOf(child)
	if n == nil {
		return
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	e.node.AppendChild(n)
}

func (e *element) Clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

func (e *element) On(event dom.EventType, h dom.Handler) dom.Registration {
	return e.doc.addListener(e.node, event, h)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
