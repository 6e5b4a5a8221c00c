package site

import "finitefield.org/heara-web/internal/dom"

// MobileMenu opens and closes the collapsible navigation. The toggle button,
// the panel and the body scroll lock always change together.
type MobileMenu struct {
	rt     Runtime
	toggle dom.Element
	panel  dom.Element
	regs   dom.Group
}

var _ Component = (*MobileMenu)(nil)

func NewMobileMenu(rt Runtime) *MobileMenu {
	return &MobileMenu{rt: rt}
}

func (m *MobileMenu) Mount() bool {
	m.Unmount()
	toggle := m.rt.Doc.ByID("mobile-toggle")
	panel := m.rt.Doc.ByID("mobile-menu")
	if toggle == nil || panel == nil {
		return false
	}
	m.toggle, m.panel = toggle, panel

	m.regs.Add(toggle.On(dom.Click, func(dom.Event) { m.Toggle() }))
	for _, link := range m.rt.Doc.QueryAll(".mobile-nav-links a") {
		m.regs.Add(link.On(dom.Click, func(dom.Event) { m.Close() }))
	}
	return true
}

func (m *MobileMenu) Unmount() {
	m.regs.Detach()
	m.toggle, m.panel = nil, nil
}

// Open reports whether the menu is showing.
func (m *MobileMenu) Open() bool {
	return m.toggle != nil && m.toggle.HasClass("active")
}

// Toggle flips the menu.
func (m *MobileMenu) Toggle() {
	if m.toggle == nil {
		return
	}
	m.set(!m.Open())
}

// Close hides the menu.
func (m *MobileMenu) Close() {
	if m.toggle == nil {
		return
	}
	m.set(false)
}

func (m *MobileMenu) set(open bool) {
	body := m.rt.Doc.Body()
	if open {
		m.toggle.AddClass("active")
		m.panel.AddClass("active")
		if body != nil {
			body.AddClass("menu-open")
		}
		return
	}
	m.toggle.RemoveClass("active")
	m.panel.RemoveClass("active")
	if body != nil {
		body.RemoveClass("menu-open")
	}
}
