package site

import (
	"fmt"

	"finitefield.org/heara-web/internal/dom"
)

// GallerySelector locates the product gallery carousel.
const GallerySelector = "#gallery-carousel"

// Carousel slides a track of .carousel-slide elements horizontally.
//
// Mount counts the slides present at that moment and resets the position, so
// after the track is repopulated the same Carousel is simply mounted again.
type Carousel struct {
	rt       Runtime
	selector string
	track    dom.Element
	count    int
	index    int
	regs     dom.Group
}

var _ Component = (*Carousel)(nil)

// NewCarousel binds to the element matching selector.
func NewCarousel(rt Runtime, selector string) *Carousel {
	if selector == "" {
		selector = GallerySelector
	}
	return &Carousel{rt: rt, selector: selector}
}

func (c *Carousel) Mount() bool {
	c.Unmount()
	root := c.rt.Doc.Query(c.selector)
	if root == nil {
		return false
	}
	track := root.Query(".carousel-track")
	if track == nil {
		return false
	}
	c.track = track
	c.count = len(track.QueryAll(".carousel-slide"))
	c.index = 0
	if c.count > 0 {
		c.apply()
	}

	if next := root.Query(".next"); next != nil {
		c.regs.Add(next.On(dom.Click, func(dom.Event) { c.MoveSlide(1) }))
	}
	if prev := root.Query(".prev"); prev != nil {
		c.regs.Add(prev.On(dom.Click, func(dom.Event) { c.MoveSlide(-1) }))
	}
	return true
}

func (c *Carousel) Unmount() {
	c.regs.Detach()
	c.track = nil
	c.count = 0
	c.index = 0
}

// MoveSlide advances by direction slides, wrapping at both ends. It is a
// no-op when there are no slides.
func (c *Carousel) MoveSlide(direction int) {
	if c.count == 0 || c.track == nil {
		return
	}
	c.index = ((c.index+direction)%c.count + c.count) % c.count
	c.apply()
}

// Index is the current slide.
func (c *Carousel) Index() int { return c.index }

// Count is the number of slides seen at Mount.
func (c *Carousel) Count() int { return c.count }

func (c *Carousel) apply() {
	c.track.SetStyle("transform", fmt.Sprintf("translateX(-%d%%)", 100*c.index))
}
