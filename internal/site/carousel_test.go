package site

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCarouselWrapsBackToStart(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for _, dir := range []int{1, -1} {
			for start := 0; start < n; start++ {
				t.Run(fmt.Sprintf("n=%d/dir=%d/start=%d", n, dir, start), func(t *testing.T) {
					rt, _ := newRuntime(t, carouselFixture(n))
					c := NewCarousel(rt, GallerySelector)
					require.True(t, c.Mount())
					require.Equal(t, n, c.Count())

					for i := 0; i < start; i++ {
						c.MoveSlide(1)
					}
					require.Equal(t, start, c.Index())

					for i := 0; i < n; i++ {
						c.MoveSlide(dir)
						require.GreaterOrEqual(t, c.Index(), 0)
						require.Less(t, c.Index(), n)
					}
					require.Equal(t, start, c.Index())
				})
			}
		}
	}
}

func TestCarouselAppliesTransform(t *testing.T) {
	rt, doc := newRuntime(t, carouselFixture(3))
	c := NewCarousel(rt, "")
	require.True(t, c.Mount())

	track := doc.Query(".carousel-track")
	require.Equal(t, "translateX(-0%)", track.Style("transform"))

	doc.Click(doc.Query(".prev"))
	require.Equal(t, 2, c.Index())
	require.Equal(t, "translateX(-200%)", track.Style("transform"))

	doc.Click(doc.Query(".next"))
	doc.Click(doc.Query(".next"))
	require.Equal(t, 1, c.Index())
	require.Equal(t, "translateX(-100%)", track.Style("transform"))

	c.MoveSlide(-7)
	require.Equal(t, 0, c.Index())
}

func TestCarouselWithoutSlidesIsNoop(t *testing.T) {
	rt, doc := newRuntime(t, carouselFixture(0))
	c := NewCarousel(rt, GallerySelector)
	require.True(t, c.Mount())

	require.NotPanics(t, func() {
		c.MoveSlide(1)
		c.MoveSlide(-1)
		doc.Click(doc.Query(".next"))
	})
	require.Equal(t, 0, c.Index())
	require.Empty(t, doc.Query(".carousel-track").Style("transform"))
}

func TestCarouselRemountDoesNotDuplicateListeners(t *testing.T) {
	rt, doc := newRuntime(t, carouselFixture(4))
	c := NewCarousel(rt, GallerySelector)
	require.True(t, c.Mount())
	require.True(t, c.Mount())

	next := doc.Query(".next")
	require.Equal(t, 1, doc.ListenerCount(next))

	doc.Click(next)
	require.Equal(t, 1, c.Index())

	c.Unmount()
	require.Equal(t, 0, doc.ListenerCount(next))
	require.Equal(t, 0, doc.ListenerCount(doc.Query(".prev")))
}

func TestCarouselMissingRoot(t *testing.T) {
	rt, _ := newRuntime(t, `<div class="other"></div>`)
	c := NewCarousel(rt, GallerySelector)
	require.False(t, c.Mount())
	require.NotPanics(t, func() { c.MoveSlide(1) })
}
