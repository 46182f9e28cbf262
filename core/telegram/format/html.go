package format

import (
	"html"
	"strings"
)

// Escape makes text safe for Telegram's HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + Escape(text) + "</b>"
}

// Italic wraps escaped text in <i>.
func Italic(text string) string {
	return "<i>" + Escape(text) + "</i>"
}

// Code wraps escaped text in <code>.
func Code(text string) string {
	return "<code>" + Escape(text) + "</code>"
}

// Pre renders a preformatted block, optionally tagged with a language.
func Pre(text, lang string) string {
	if lang == "" {
		return "<pre>" + Escape(text) + "</pre>"
	}
	return `<pre><code class="language-` + Escape(lang) + `">` + Escape(text) + "</code></pre>"
}

// Bullets renders escaped items as "• item" lines.
func Bullets(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(Escape(item))
	}
	return b.String()
}

// Truncate shortens text to max runes, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// Join concatenates non-empty blocks separated by a blank line.
func Join(blocks ...string) string {
	kept := blocks[:0:0]
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}
