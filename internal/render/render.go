// Package render превращает выборку дайджеста в html письмо и markdown для телеграма.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Meta то, чего нет в самой выборке
type Meta struct {
	Title string
	// Вступление от summarizer, может быть пустым
	Intro string
}

func (m Meta) heading(day time.Time) string {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = "Daily brief"
	}

	return fmt.Sprintf("%s, %s", title, day.Format("2 Jan 2006"))
}

// Строка в том виде, в котором ее удобно рисовать
type row struct {
	Label    string
	Title    string
	URL      string
	ImageURL string
	Company  string
	Sector   string
	Source   string
	Amount   string
}

func toRow(r model.DigestRow) row {
	return row{
		Label:    Label(r.Kind),
		Title:    r.Title,
		URL:      deref(r.URL),
		ImageURL: deref(r.ImageURL),
		Company:  knownCompany(r.Company),
		Sector:   r.Sector,
		Source:   r.Source,
		Amount:   FormatAmount(r.Amount, r.Currency),
	}
}

// Label подпись для вида строки
func Label(kind string) string {
	switch kind {
	case model.EventFunding:
		return "Funding"
	case model.EventLaunch:
		return "Launch"
	case model.EventRevenueMilestone:
		return "Revenue milestone"
	case model.KindNews, "":
		return "News"
	default:
		return "Update"
	}
}

// FormatAmount пишет сумму коротко: USD 12.5M. Без суммы пустая строка
func FormatAmount(amount *float64, currency *string) string {
	if amount == nil {
		return ""
	}

	value := *amount
	var text string

	switch abs := max(value, -value); {
	case abs >= 1e9:
		text = trimZero(value/1e9) + "B"
	case abs >= 1e6:
		text = trimZero(value/1e6) + "M"
	case abs >= 1e3:
		text = trimZero(value/1e3) + "K"
	default:
		text = trimZero(value)
	}

	if cur := strings.ToUpper(strings.TrimSpace(deref(currency))); cur != "" {
		return cur + " " + text
	}

	return text
}

func trimZero(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return strings.TrimSpace(*s)
}

// Заглушку компании в тексте не показываем
func knownCompany(name string) string {
	if name == model.UnknownCompany {
		return ""
	}

	return name
}

type document struct {
	Heading string
	Intro   string
	Top     []row
	More    []row
}

func newDocument(sel model.Selection, meta Meta) document {
	return document{
		Heading: meta.heading(sel.Date),
		Intro:   strings.TrimSpace(meta.Intro),
		Top:     lo.Map(sel.Top, func(r model.DigestRow, _ int) row { return toRow(r) }),
		More:    lo.Map(sel.More, func(r model.DigestRow, _ int) row { return toRow(r) }),
	}
}

// HTML рисует письмо. Необязательные поля выводятся только если они есть
func HTML(sel model.Selection, meta Meta) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, newDocument(sel, meta)); err != nil {
		return "", fmt.Errorf("render html digest: %w", err)
	}

	return buf.String(), nil
}

// Markdown рисует тот же дайджест в MarkdownV2 для телеграма
func Markdown(sel model.Selection, meta Meta) string {
	doc := newDocument(sel, meta)

	var b strings.Builder
	b.WriteString(markup.Bold(doc.Heading))

	if doc.Intro != "" {
		b.WriteString("\n\n")
		b.WriteString(markup.EscapeForMarkdown(doc.Intro))
	}

	if len(doc.Top) > 0 {
		b.WriteString("\n\n")
		b.WriteString(markup.Bold("Top stories"))

		for i, r := range doc.Top {
			fmt.Fprintf(&b, "\n%d\\. %s", i+1, markdownTitle(r))
			if details := details(r); details != "" {
				b.WriteString("\n")
				b.WriteString(markup.EscapeForMarkdown(details))
			}
		}
	}

	if len(doc.More) > 0 {
		b.WriteString("\n\n")
		b.WriteString(markup.Bold("More headlines"))

		for _, r := range doc.More {
			b.WriteString("\n• ")
			b.WriteString(markdownTitle(r))
			if r.Source != "" {
				b.WriteString(markup.EscapeForMarkdown(" (" + r.Source + ")"))
			}
		}
	}

	return b.String()
}

func markdownTitle(r row) string {
	if r.URL == "" {
		return markup.EscapeForMarkdown(r.Title)
	}

	return markup.Link(r.Title, r.URL)
}

// Вторая строка пункта: вид, сумма, компания, источник
func details(r row) string {
	parts := []string{r.Label, r.Amount, r.Company, r.Source}

	return strings.Join(lo.Compact(parts), " | ")
}

var emailTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"details": details,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Heading}}</title></head>
<body style="margin:0;padding:0;background:#f4f4f4;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="max-width:640px;margin:0 auto;background:#ffffff;">
<tr><td style="padding:24px;">
<h1 style="font-size:22px;margin:0 0 12px 0;">{{.Heading}}</h1>
{{- if .Intro}}
<p style="font-size:15px;line-height:1.5;color:#333333;">{{.Intro}}</p>
{{- end}}
{{- if .Top}}
<h2 style="font-size:18px;margin:24px 0 8px 0;">Top stories</h2>
{{- range .Top}}
<div style="margin:0 0 20px 0;">
{{- if .ImageURL}}
<img src="{{.ImageURL}}" alt="" width="592" style="display:block;width:100%;max-width:592px;height:auto;margin:0 0 8px 0;">
{{- end}}
<p style="font-size:16px;font-weight:bold;margin:0 0 4px 0;">{{if .URL}}<a href="{{.URL}}" style="color:#1a0dab;text-decoration:none;">{{.Title}}</a>{{else}}{{.Title}}{{end}}</p>
<p style="font-size:13px;color:#666666;margin:0;">{{details .}}{{if .Sector}} | {{.Sector}}{{end}}</p>
</div>
{{- end}}
{{- end}}
{{- if .More}}
<h2 style="font-size:18px;margin:24px 0 8px 0;">More headlines</h2>
<ul style="padding-left:20px;margin:0;">
{{- range .More}}
<li style="font-size:14px;margin:0 0 6px 0;">{{if .URL}}<a href="{{.URL}}" style="color:#1a0dab;">{{.Title}}</a>{{else}}{{.Title}}{{end}}{{if .Source}} <span style="color:#666666;">({{.Source}})</span>{{end}}</li>
{{- end}}
</ul>
{{- end}}
</td></tr>
</table>
</body>
</html>
`))
