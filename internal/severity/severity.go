package severity

import "strings"

const (
	Min = 0
	Max = 10
)

type keyword struct {
	word  string
	score int
}

// Словарь проверяется строго в этом порядке, от него же зависит порядок тегов
var lexicon = []keyword{
	{"critical", 10},
	{"exploit", 9},
	{"ransomware", 9},
	{"breach", 8},
	{"vulnerability", 8},
	{"attack", 7},
	{"alert", 6},
	{"warning", 5},
}

// Classify ищет слова из словаря в заголовке без учета регистра.
// В теги попадают все найденные слова, а важность берется по максимальному из них
func Classify(title string) ([]string, int) {
	lower := strings.ToLower(title)

	// Пустой, а не nil: в json подписчикам должен уйти [], а не null
	tags := []string{}
	score := Min

	for _, kw := range lexicon {
		if !strings.Contains(lower, kw.word) {
			continue
		}

		tags = append(tags, strings.ToUpper(kw.word))
		if kw.score > score {
			score = kw.score
		}
	}

	return tags, score
}

// Label - грубая оценка для API: high, medium или low
func Label(score int) string {
	switch {
	case score >= 7:
		return "high"
	case score >= 4:
		return "medium"
	default:
		return "low"
	}
}

// Уровни для уведомлений
const (
	LevelCritical = "CRITICAL"
	LevelHigh     = "HIGH"
	LevelMedium   = "MEDIUM"
	LevelLow      = "LOW"
	LevelInfo     = "INFO"
)

// Level - подпись для уведомлений
func Level(score int) string {
	switch score {
	case 10, 9:
		return LevelCritical
	case 8:
		return LevelHigh
	case 7:
		return LevelMedium
	case 5:
		return LevelLow
	default:
		return LevelInfo
	}
}

// Clamp загоняет значение в допустимый диапазон [Min, Max]
func Clamp(score int) int {
	if score < Min {
		return Min
	}
	if score > Max {
		return Max
	}
	return score
}
