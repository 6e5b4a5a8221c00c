package site

import "finitefield.org/heara-web/internal/dom"

// ScrollThreshold is the scroll offset in pixels past which the navbar is
// marked as scrolled.
const ScrollThreshold = 50

// Navbar toggles the "scrolled" class on #navbar as the window scrolls.
type Navbar struct {
	rt     Runtime
	header dom.Element
	regs   dom.Group
}

var _ Component = (*Navbar)(nil)

func NewNavbar(rt Runtime) *Navbar {
	return &Navbar{rt: rt}
}

func (n *Navbar) Mount() bool {
	n.Unmount()
	header := n.rt.Doc.ByID("navbar")
	if header == nil {
		return false
	}
	n.header = header
	n.regs.Add(n.rt.Doc.OnWindow(dom.Scroll, func(dom.Event) { n.update() }))
	n.update()
	return true
}

func (n *Navbar) Unmount() {
	n.regs.Detach()
	n.header = nil
}

func (n *Navbar) update() {
	if n.header == nil {
		return
	}
	if n.rt.Doc.ScrollY() > ScrollThreshold {
		n.header.AddClass("scrolled")
	} else {
		n.header.RemoveClass("scrolled")
	}
}
