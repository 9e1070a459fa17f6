package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		want     Kind
	}{
		{"What is the difference between A and B?", KindComparison},
		{"Compare Go and Rust", KindComparison},
		{"Python VS Ruby", KindComparison},
		{"pros and cons of remote work", KindComparison},
		{"Which is better for beginners?", KindComparison},
		{"How do TCP and UDP differ?", KindComparison},
		{"Summarize this article", KindGeneral},
		{"Write a haiku about autumn", KindGeneral},
		{"", KindGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.question))
		})
	}
}

func TestClassifyMatchesInsideWords(t *testing.T) {
	// "different" contains "differ".
	assert.Equal(t, KindComparison, Classify("Tell me something different"))
}

func TestBuildPrompt(t *testing.T) {
	q := "Compare tea and coffee"

	prompt := BuildPrompt(q, KindComparison)
	assert.True(t, strings.HasPrefix(prompt, q+"\n\n"))
	assert.Contains(t, prompt, "| Feature/Aspect | First Item | Second Item |")
	assert.Contains(t, prompt, "ONLY respond with the comparison table")

	assert.Equal(t, "Summarize this article", BuildPrompt("Summarize this article", KindGeneral))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "comparison", KindComparison.String())
	assert.Equal(t, "general", KindGeneral.String())
}
