package site

import (
	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/dom"
	"finitefield.org/heara-web/internal/i18n"
)

// Dependencies are the collaborators of the page components. Nil clients
// leave the corresponding component unmounted; a nil Bundle selects the
// embedded dictionaries.
type Dependencies struct {
	Bundle   *i18n.Bundle
	Products ProductLister
	Leads    LeadCreator
	Admin    LeadManager
}

// Site wires every component of the page.
type Site struct {
	rt         Runtime
	Language   *LanguageManager
	Navbar     *Navbar
	Menu       *MobileMenu
	Carousel   *Carousel
	Products   *ProductManager
	Form       *RegistrationForm
	Dashboard  *AdminDashboard
	components []namedComponent
	regs       dom.Group
}

type namedComponent struct {
	name string
	c    Component
}

// New builds the components without touching the document.
func New(rt Runtime, deps Dependencies) *Site {
	if deps.Bundle == nil {
		deps.Bundle = i18n.MustDefault()
	}
	s := &Site{rt: rt}
	s.Language = NewLanguageManager(rt, deps.Bundle)
	s.Navbar = NewNavbar(rt)
	s.Menu = NewMobileMenu(rt)
	s.Carousel = NewCarousel(rt, GallerySelector)
	s.Products = NewProductManager(rt, deps.Products, s.Language, s.Carousel)
	s.Form = NewRegistrationForm(rt, deps.Leads, s.Language)
	s.Dashboard = NewAdminDashboard(rt, deps.Admin, s.Language)

	// The language goes first so the others render in the page locale.
	s.components = []namedComponent{
		{"language", s.Language},
		{"navbar", s.Navbar},
		{"mobile-menu", s.Menu},
		{"carousel", s.Carousel},
		{"products", s.Products},
		{"registration", s.Form},
		{"dashboard", s.Dashboard},
	}
	return s
}

// Mount mounts every component independently and returns how many bound.
func (s *Site) Mount() int {
	s.Unmount()
	log := s.rt.logger("site")
	mounted := 0
	for _, nc := range s.components {
		if nc.c.Mount() {
			mounted++
			continue
		}
		log.Debug("component skipped", zap.String("name", nc.name))
	}
	s.regs.Add(s.Language.OnChange(func(string) { s.Dashboard.Rerender() }))
	log.Info("site mounted", zap.Int("components", mounted))
	return mounted
}

// Unmount releases every listener.
func (s *Site) Unmount() {
	s.regs.Detach()
	for i := len(s.components) - 1; i >= 0; i-- {
		s.components[i].c.Unmount()
	}
}

// Start builds the site and mounts it once the document is ready.
func Start(rt Runtime, deps Dependencies) *Site {
	s := New(rt, deps)
	rt.Doc.Ready(func() { s.Mount() })
	return s
}
