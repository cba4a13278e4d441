package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		expectedTags  []string
		expectedScore int
	}{
		{name: "no keywords", title: "Quarterly product update", expectedTags: []string{}, expectedScore: 0},
		{name: "empty", title: "", expectedTags: []string{}, expectedScore: 0},
		{name: "critical upper", title: "CRITICAL flaw in router firmware", expectedTags: []string{"CRITICAL"}, expectedScore: 10},
		{name: "critical mixed case", title: "A CrItIcAl update", expectedTags: []string{"CRITICAL"}, expectedScore: 10},
		{name: "substring match", title: "Attackers abuse misconfigured buckets", expectedTags: []string{"ATTACK"}, expectedScore: 7},
		{
			name:          "all matches kept, max score wins",
			title:         "Warning: critical vulnerability exploited in ransomware attack",
			expectedTags:  []string{"CRITICAL", "EXPLOIT", "RANSOMWARE", "VULNERABILITY", "ATTACK", "WARNING"},
			expectedScore: 10,
		},
		{name: "lexicon order, not title order", title: "warning before alert", expectedTags: []string{"ALERT", "WARNING"}, expectedScore: 6},
		{name: "repeated keyword tagged once", title: "breach after breach", expectedTags: []string{"BREACH"}, expectedScore: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, score := Classify(tt.title)
			assert.Equal(t, tt.expectedTags, tags)
			assert.Equal(t, tt.expectedScore, score)
			assert.GreaterOrEqual(t, score, Min)
			assert.LessOrEqual(t, score, Max)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "high", Label(10))
	assert.Equal(t, "high", Label(7))
	assert.Equal(t, "medium", Label(6))
	assert.Equal(t, "medium", Label(4))
	assert.Equal(t, "low", Label(3))
	assert.Equal(t, "low", Label(0))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "CRITICAL", Level(10))
	assert.Equal(t, "CRITICAL", Level(9))
	assert.Equal(t, "HIGH", Level(8))
	assert.Equal(t, "MEDIUM", Level(7))
	assert.Equal(t, "INFO", Level(6))
	assert.Equal(t, "LOW", Level(5))
	assert.Equal(t, "INFO", Level(0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3))
	assert.Equal(t, 10, Clamp(42))
	assert.Equal(t, 7, Clamp(7))
}
