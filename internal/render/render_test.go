package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func testSelection() model.Selection {
	return model.Selection{
		Date:   time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		Policy: "variety",
		Top: []model.DigestRow{
			{
				Kind:     model.EventFunding,
				Title:    "Snackly raises <Series A>",
				Company:  "Snackly",
				Sector:   "Food",
				Source:   "TechCrunch",
				URL:      strPtr("https://techcrunch.com/snackly"),
				ImageURL: strPtr("https://img.example.com/snackly.jpg"),
				Amount:   floatPtr(12_500_000),
				Currency: strPtr("usd"),
			},
			{
				Kind:    model.KindNews,
				Title:   "Retail sales jump",
				Company: model.UnknownCompany,
				Sector:  model.GeneralSector,
				Source:  "Reuters",
				URL:     strPtr("https://reuters.com/retail"),
			},
		},
		More: []model.DigestRow{
			{Kind: model.KindNews, Title: "Brand wars (part 2)", Source: "CNN Business"},
		},
	}
}

func TestHTML(t *testing.T) {
	t.Parallel()

	out, err := HTML(testSelection(), Meta{Title: "Consumer brief", Intro: "Busy day."})
	require.NoError(t, err)

	assert.Contains(t, out, "Consumer brief, 17 Oct 2026")
	assert.Contains(t, out, "Busy day.")
	assert.Contains(t, out, "Snackly raises &lt;Series A&gt;")
	assert.Contains(t, out, `<img src="https://img.example.com/snackly.jpg"`)
	assert.Contains(t, out, "Funding | USD 12.5M | Snackly | TechCrunch | Food")
	assert.Contains(t, out, "News | Reuters | General")
	assert.NotContains(t, out, model.UnknownCompany)
	assert.Contains(t, out, "More headlines")
	assert.Contains(t, out, "Brand wars (part 2)")

	// у второй новости нет картинки
	assert.Equal(t, 1, strings.Count(out, "<img"))
}

func TestHTML_OptionalSections(t *testing.T) {
	t.Parallel()

	sel := testSelection()
	sel.More = nil

	out, err := HTML(sel, Meta{})
	require.NoError(t, err)

	assert.Contains(t, out, "Daily brief, 17 Oct 2026")
	assert.NotContains(t, out, "More headlines")
	assert.NotContains(t, out, "<p style=\"font-size:15px")
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	out := Markdown(testSelection(), Meta{Intro: "Busy day."})

	assert.True(t, strings.HasPrefix(out, `*Daily brief, 17 Oct 2026*`))
	assert.Contains(t, out, `Busy day\.`)
	assert.Contains(t, out, `1\. [Snackly raises <Series A\>](https://techcrunch.com/snackly)`)
	assert.Contains(t, out, `Funding \| USD 12\.5M \| Snackly \| TechCrunch`)
	assert.Contains(t, out, `2\. [Retail sales jump](https://reuters.com/retail)`)
	assert.Contains(t, out, `• Brand wars \(part 2\) \(CNN Business\)`)
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatAmount(nil, strPtr("USD")))
	assert.Equal(t, "USD 12.5M", FormatAmount(floatPtr(12_500_000), strPtr(" usd ")))
	assert.Equal(t, "2B", FormatAmount(floatPtr(2_000_000_000), nil))
	assert.Equal(t, "EUR 750K", FormatAmount(floatPtr(750_000), strPtr("EUR")))
	assert.Equal(t, "950", FormatAmount(floatPtr(950), nil))
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Funding", Label(model.EventFunding))
	assert.Equal(t, "News", Label(model.KindNews))
	assert.Equal(t, "Update", Label(model.EventOther))
}
