package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	fsys := fstest.MapFS{
		"en.yaml": {Data: []byte("hero:\n  title: Hello **world**\n  cta: Go\nonly_en: English only\nunsafe: '<script>alert(1)</script>Hi'\n")},
		"he.yaml": {Data: []byte("hero:\n  title: שלום **עולם**\n  cta: קדימה\n")},
	}
	b, err := Load(fsys, English, []string{English, Hebrew})
	require.NoError(t, err)
	return b
}

func TestResolveHonorsQValues(t *testing.T) {
	b := testBundle(t)

	require.Equal(t, English, b.Resolve("he;q=0.8, en;q=0.9"))
	require.Equal(t, Hebrew, b.Resolve("he-IL,he;q=0.9,en;q=0.5"))
	require.Equal(t, English, b.Resolve("fr-FR"))
	require.Equal(t, English, b.Resolve(""))
}

func TestLoadFlattensAndRendersMarkdown(t *testing.T) {
	b := testBundle(t)

	raw, ok := b.Lookup(English, "hero.title")
	require.True(t, ok)
	require.Equal(t, "Hello **world**", raw)

	rendered, ok := b.LookupHTML(English, "hero.title")
	require.True(t, ok)
	require.Equal(t, "Hello <strong>world</strong>", rendered)

	unsafe, _ := b.LookupHTML(English, "unsafe")
	require.NotContains(t, unsafe, "<script")
	require.Contains(t, unsafe, "Hi")
}

func TestTFallsBackToDefaultThenKey(t *testing.T) {
	b := testBundle(t)

	require.Equal(t, "קדימה", b.T(Hebrew, "hero.cta"))
	require.Equal(t, "English only", b.T(Hebrew, "only_en"))
	require.Equal(t, "nope.missing", b.T(Hebrew, "nope.missing"))

	_, ok := b.Lookup(Hebrew, "only_en")
	require.False(t, ok)
}

func TestLoadRequiresFallback(t *testing.T) {
	_, err := Load(fstest.MapFS{"he.yaml": {Data: []byte("a: b\n")}}, English, []string{English, Hebrew})
	require.Error(t, err)

	_, err = Load(fstest.MapFS{"en.yaml": {Data: []byte("a: [1, 2]\n")}}, English, nil)
	require.Error(t, err)
}

func TestOtherAndNormalize(t *testing.T) {
	b := testBundle(t)

	require.Equal(t, Hebrew, b.Other(English))
	require.Equal(t, English, b.Other(Hebrew))
	require.Equal(t, Hebrew, b.Normalize("he-IL"))
	require.Equal(t, Hebrew, b.Normalize("iw"))
	require.Equal(t, English, b.Normalize("de"))
	require.Equal(t, []string{English, Hebrew}, b.Supported())
}

func TestDirection(t *testing.T) {
	require.Equal(t, "rtl", Direction(Hebrew))
	require.Equal(t, "rtl", Direction("he-IL"))
	require.Equal(t, "ltr", Direction(English))
	require.Equal(t, "ltr", Direction(""))
}

func TestMissingReportsGaps(t *testing.T) {
	b := testBundle(t)

	require.Equal(t, []MissingKey{
		{Locale: Hebrew, Key: "only_en"},
		{Locale: Hebrew, Key: "unsafe"},
	}, b.Missing())
}

func TestEmbeddedDictionariesAreComplete(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)
	require.Empty(t, b.Missing())

	for _, key := range []string{"products.unavailable", "form.submit", "form.sending", "admin.load_error", "status.closed"} {
		for _, lang := range b.Supported() {
			_, ok := b.Lookup(lang, key)
			require.True(t, ok, "%s/%s", lang, key)
		}
	}
}

func TestTextStripsMarkdownAndMarkup(t *testing.T) {
	b := testBundle(t)

	text, ok := b.LookupText(English, "hero.title")
	require.True(t, ok)
	require.Equal(t, "Hello world", text)
	require.Equal(t, "שלום עולם", b.Text(Hebrew, "hero.title"))
	require.Equal(t, "English only", b.Text(Hebrew, "only_en"))
	require.Equal(t, "Hi", b.Text(English, "unsafe"))
	require.Equal(t, "nope.missing", b.Text(Hebrew, "nope.missing"))
}

func TestTextDecodesEntities(t *testing.T) {
	b, err := Load(fstest.MapFS{
		"en.yaml": {Data: []byte("q: Tom & \"Jerry\" <b>x</b>\n")},
	}, English, []string{English})
	require.NoError(t, err)

	require.Equal(t, `Tom & "Jerry" x`, b.Text(English, "q"))
}
