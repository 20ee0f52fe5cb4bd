package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestRowKey(t *testing.T) {
	t.Parallel()

	url := "https://reuters.com/1"
	empty := ""

	assert.Equal(t, url, DigestRow{URL: &url, Title: "Retail"}.Key())
	assert.Equal(t, "news|Retail|Acme", DigestRow{Kind: KindNews, Title: "Retail", Company: "Acme"}.Key())
	assert.Equal(t, "news|Retail|Acme", DigestRow{Kind: KindNews, Title: "Retail", Company: "Acme", URL: &empty}.Key())
}

func TestStoreResultString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "inserted", StoreInserted.String())
	assert.Equal(t, "image_refreshed", StoreImageRefreshed.String())
	assert.Equal(t, "unchanged", StoreUnchanged.String())
}

func TestSelection(t *testing.T) {
	t.Parallel()

	assert.True(t, Selection{}.Empty())

	sel := Selection{Top: []DigestRow{{}}, More: []DigestRow{{}, {}}}
	assert.Equal(t, 3, sel.Len())
	assert.False(t, sel.Empty())
}
