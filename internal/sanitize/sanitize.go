package sanitize

import (
	"regexp"
	"strings"
)

var tags = regexp.MustCompile(`<[^>]+>`)

// Порядок важен: &amp; раскрываем последним, иначе "&amp;lt;" превратится в "<"
var entities = []struct{ from, to string }{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&amp;", "&"},
}

// Text вычищает теги и базовые html-сущности из текста ленты.
// Никогда не падает: то, что не похоже на тег, остается как есть
func Text(raw string) string {
	if raw == "" {
		return ""
	}

	text := tags.ReplaceAllString(raw, "")
	for _, e := range entities {
		text = strings.ReplaceAll(text, e.from, e.to)
	}

	return strings.TrimSpace(text)
}
