package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStrategies(t *testing.T) {
	t.Parallel()

	e := Entry{
		MediaContent: []Media{
			{URL: "http://img/video.mp4", Type: "video/mp4"},
			{URL: "http://img/content.jpg", Medium: "image"},
		},
		MediaThumbnails: []string{"", "http://img/thumb.jpg"},
		Image:           "http://img/item.jpg",
		Enclosures: []Enclosure{
			{URL: "http://audio/a.mp3", Type: "audio/mpeg"},
			{URL: "http://img/enclosure.png", Type: "image/png"},
		},
		Summary: `<p>text <img src="http://img/inline.gif"></p>`,
	}

	assert.Equal(t, "http://img/content.jpg", MediaContentImage(e))
	assert.Equal(t, "http://img/thumb.jpg", MediaThumbnailImage(e))
	assert.Equal(t, "http://img/item.jpg", ItemImage(e))
	assert.Equal(t, "http://img/enclosure.png", EnclosureImage(e))
	assert.Equal(t, "http://img/inline.gif", SummaryImage(e))

	assert.Empty(t, MediaContentImage(Entry{}))
	assert.Empty(t, MediaThumbnailImage(Entry{}))
	assert.Empty(t, EnclosureImage(Entry{Enclosures: []Enclosure{{URL: "http://a", Type: "audio/mpeg"}}}))
	assert.Empty(t, SummaryImage(Entry{Summary: "no images"}))
}

func TestPickImage_FirstStrategyWins(t *testing.T) {
	t.Parallel()

	e := Entry{
		MediaThumbnails: []string{"http://img/thumb.jpg"},
		Enclosures:      []Enclosure{{URL: "http://img/enc.png", Type: "image/png"}},
	}

	assert.Equal(t, "http://img/thumb.jpg", pickImage(e, DefaultImageStrategies()))
	assert.Equal(t, "http://img/enc.png", pickImage(e, []ImageStrategy{EnclosureImage, MediaThumbnailImage}))
	assert.Empty(t, pickImage(Entry{}, DefaultImageStrategies()))
}

func TestToItem(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 10, 17, 9, 30, 0, 0, time.FixedZone("MSK", 3*60*60))

	item := toItem(Entry{
		Title:     "  Foo raises Series A ",
		Link:      " http://x/1 ",
		Summary:   "<p>Consumer <b>brand</b>\n news</p>",
		Source:    " Wire ",
		Published: &published,
	}, DefaultImageStrategies())

	assert.Equal(t, "Foo raises Series A", item.Title)
	assert.Equal(t, "http://x/1", item.Link)
	assert.Equal(t, "Consumer brand news", item.Summary)
	assert.Equal(t, "Wire", item.SourceName)
	require.NotNil(t, item.PublishedAt)
	assert.Equal(t, time.UTC, item.PublishedAt.Location())
	assert.True(t, published.Equal(*item.PublishedAt))
	assert.Nil(t, item.ImageURL)
}

func TestToItem_NoTimestamp(t *testing.T) {
	t.Parallel()

	zero := time.Time{}

	assert.Nil(t, toItem(Entry{Title: "a", Link: "b"}, nil).PublishedAt)
	assert.Nil(t, toItem(Entry{Title: "a", Link: "b", Published: &zero}, nil).PublishedAt)
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain text", plainText("plain   text"))
	assert.Equal(t, "Tom & Jerry", plainText("Tom &amp; Jerry"))
	assert.Equal(t, "a b", plainText("<div>a</div><div>b</div>"))
	assert.Empty(t, plainText(""))
}
