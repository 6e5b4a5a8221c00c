package site

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/dom"
	"finitefield.org/heara-web/internal/format"
)

// ProductLister fetches the catalogue.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
}

// ProductManager fills the gallery carousel with one slide per product.
type ProductManager struct {
	rt       Runtime
	products ProductLister
	tr       Translator
	carousel *Carousel
	log      *zap.Logger
}

var _ Component = (*ProductManager)(nil)

// NewProductManager renders into carousel's track. Carousel may be nil, in
// which case one bound to the gallery is created.
func NewProductManager(rt Runtime, products ProductLister, tr Translator, carousel *Carousel) *ProductManager {
	if carousel == nil {
		carousel = NewCarousel(rt, GallerySelector)
	}
	return &ProductManager{
		rt:       rt,
		products: products,
		tr:       tr,
		carousel: carousel,
		log:      rt.logger("products"),
	}
}

// Mount starts loading when the gallery is on the page.
func (p *ProductManager) Mount() bool {
	if p.track() == nil || p.products == nil {
		return false
	}
	p.rt.spawn(func() { _ = p.Load(p.rt.ctx()) })
	return true
}

func (p *ProductManager) Unmount() {
	p.carousel.Unmount()
}

// Carousel returns the carousel bound to the rendered slides.
func (p *ProductManager) Carousel() *Carousel { return p.carousel }

func (p *ProductManager) track() dom.Element {
	return p.rt.Doc.Query(p.carousel.selector + " .carousel-track")
}

// Load fetches the products and rebuilds the slides. On failure the track
// shows a static message instead; there is no retry.
func (p *ProductManager) Load(ctx context.Context) error {
	track := p.track()
	if track == nil {
		return ErrNoTarget
	}

	products, err := p.products.ListProducts(ctx)
	if err != nil {
		p.log.Warn("load products failed", zap.Error(err))
		p.carousel.Unmount()
		track.Clear()
		msg := p.rt.Doc.Create("p")
		msg.AddClass("carousel-error")
		msg.SetText(label(p.tr, "products.unavailable", "Unable to load products."))
		track.Append(msg)
		return err
	}

	track.Clear()
	for _, product := range products {
		track.Append(p.slide(product))
	}
	p.carousel.Mount()
	p.log.Debug("products rendered", zap.Int("count", len(products)))
	return nil
}

func (p *ProductManager) slide(product api.Product) dom.Element {
	doc := p.rt.Doc
	slide := doc.Create("div")
	slide.AddClass("carousel-slide")
	if product.ID != "" {
		slide.SetAttr("data-product-id", product.ID)
	}

	if strings.TrimSpace(product.ImageURL) != "" {
		img := doc.Create("img")
		img.SetAttr("src", product.ImageURL)
		img.SetAttr("alt", product.Name)
		img.SetAttr("loading", "lazy")
		slide.Append(img)
	}

	caption := doc.Create("div")
	caption.AddClass("slide-caption")

	name := doc.Create("h3")
	name.SetText(product.Name)
	caption.Append(name)

	price := doc.Create("p")
	price.AddClass("price")
	price.SetText(format.Price(product.Price, "ILS", langOf(p.tr)))
	caption.Append(price)

	slide.Append(caption)
	return slide
}
