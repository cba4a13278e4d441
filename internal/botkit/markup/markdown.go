package markup

import "strings"

// Символы, которые MarkdownV2 телеграма требует экранировать вне разметки
const specialChars = "\\_*[]()~`>#+-=|{}.!"

var replacer = newReplacer(specialChars)

func newReplacer(chars string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(chars))
	for _, c := range chars {
		pairs = append(pairs, string(c), "\\"+string(c))
	}

	return strings.NewReplacer(pairs...)
}

// Экранирует спецсимволы markdown для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

// Жирный текст с экранированием содержимого
func Bold(src string) string {
	return "*" + EscapeForMarkdown(src) + "*"
}
