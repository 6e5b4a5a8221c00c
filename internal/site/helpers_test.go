package site

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/dom/htmldom"
	"finitefield.org/heara-web/internal/i18n"
)

const landingFixture = `<!doctype html>
<html lang="en" dir="ltr">
<head><title>He-Ara</title></head>
<body>
<header id="navbar">
  <a class="lang-toggle" href="#">HE</a>
  <button id="mobile-toggle" type="button">menu</button>
</header>
<nav id="mobile-menu">
  <ul class="mobile-nav-links">
    <li><a href="#features">Features</a></li>
    <li><a href="#contact">Contact</a></li>
  </ul>
</nav>
<h1 data-i18n="hero.title">Hello <strong>world</strong></h1>
<p data-i18n="only_en">English only</p>
<div id="gallery-carousel">
  <button class="prev" type="button">prev</button>
  <div class="carousel-track"></div>
  <button class="next" type="button">next</button>
</div>
<form class="registration-form">
  <input name="name" data-i18n="form.name" placeholder="Full name">
  <input name="email" type="email">
  <input name="phone" type="tel">
  <textarea name="message"></textarea>
  <button type="submit">Send</button>
</form>
</body>
</html>`

const adminFixture = `<!doctype html>
<html lang="en" dir="ltr">
<body>
<select id="lead-status-filter">
  <option value="">All</option>
  <option value="new">New</option>
  <option value="contacted">Contacted</option>
  <option value="converted">Converted</option>
  <option value="closed">Closed</option>
</select>
<table id="leads-table">
  <thead><tr><th>Date</th><th>Name</th><th>Email</th><th>Phone</th><th>Status</th><th>Update</th></tr></thead>
  <tbody></tbody>
</table>
</body>
</html>`

const enDict = `
hero:
  title: Hello **world**
only_en: English only
form:
  name: Full name
  sending: Sending...
  success: Thanks!
  error: Something went wrong.
  required: Fill in every field.
products:
  unavailable: Unable to load products right now.
admin:
  load_error: Failed to load leads.
  update_error: Failed to update lead status.
  empty: No leads yet.
status:
  new: New
  closed: Closed
`

const heDict = `
hero:
  title: שלום **עולם**
form:
  name: שם מלא
  sending: שולח...
products:
  unavailable: לא ניתן לטעון מוצרים כרגע.
status:
  new: חדש
  closed: סגור
`

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.Load(fstest.MapFS{
		"en.yaml": {Data: []byte(enDict)},
		"he.yaml": {Data: []byte(heDict)},
	}, i18n.English, []string{i18n.English, i18n.Hebrew})
	require.NoError(t, err)
	return b
}

func newRuntime(t *testing.T, markup string) (Runtime, *htmldom.Document) {
	t.Helper()
	doc := htmldom.MustParse(markup)
	return Runtime{Doc: doc, Logger: zap.NewNop(), Spawn: Inline, Context: context.Background()}, doc
}

// staticTranslator pins a locale without a LanguageManager.
type staticTranslator struct {
	bundle *i18n.Bundle
	lang   string
}

func (s staticTranslator) Lang() string { return s.lang }
func (s staticTranslator) T(key string) string { return s.bundle.T(s.lang, key) }

func carouselFixture(n int) string {
	var b strings.Builder
	b.WriteString(`<div id="gallery-carousel"><button class="prev"></button><div class="carousel-track">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="carousel-slide">%d</div>`, i)
	}
	b.WriteString(`</div><button class="next"></button></div>`)
	return b.String()
}

type fakeProducts struct {
	products []api.Product
	err      error
	calls    int
}

func (f *fakeProducts) ListProducts(context.Context) ([]api.Product, error) {
	f.calls++
	return f.products, f.err
}

type statusUpdate struct {
	id     string
	status api.LeadStatus
}

type fakeLeads struct {
	mu        sync.Mutex
	leads     []api.Lead
	listErr   error
	listCalls int
	filters   []api.LeadFilter
	updateErr error
	updates   []statusUpdate
	created   []api.NewLead
	createErr error
	onCreate  func()
}

func (f *fakeLeads) ListLeads(_ context.Context, filter api.LeadFilter) ([]api.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.Lead(nil), f.leads...), nil
}

func (f *fakeLeads) UpdateLeadStatus(_ context.Context, id string, status api.LeadStatus) (*api.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, statusUpdate{id: id, status: status})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return nil, nil
}

func (f *fakeLeads) CreateLead(_ context.Context, in api.NewLead) (*api.Lead, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &api.Lead{ID: "1", Name: in.Name, Status: in.Status}, nil
}

func (f *fakeLeads) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}
