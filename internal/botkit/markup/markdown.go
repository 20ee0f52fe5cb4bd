// Package markup экранирует текст для MarkdownV2 телеграма.
package markup

import "strings"

var (
	replacer = strings.NewReplacer(
		"\\", "\\\\",
		"-", "\\-",
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)

	// Внутри (...) ссылки телеграм требует экранировать только ) и \
	linkReplacer = strings.NewReplacer(
		"\\", "\\\\",
		")", "\\)",
	)
)

// Функция которая делает escape спец символы markdown специально для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

// Link собирает ссылку [text](url) с нужным экранированием обеих частей
func Link(text, url string) string {
	return "[" + EscapeForMarkdown(text) + "](" + linkReplacer.Replace(url) + ")"
}

func Bold(text string) string {
	return "*" + EscapeForMarkdown(text) + "*"
}
