package chat

import "strings"

// Kind classifies a question.
type Kind int

const (
	// KindGeneral is any question answered in prose.
	KindGeneral Kind = iota
	// KindComparison asks to compare things and gets a table directive.
	KindComparison
)

func (k Kind) String() string {
	if k == KindComparison {
		return "comparison"
	}
	return "general"
}

// ComparisonKeywords flag a question as a comparison when any of them occurs
// in it, case-insensitively. Matching is by substring, so "vs" also matches
// inside longer words.
var ComparisonKeywords = []string{
	"difference", "compare", "comparison", "vs", "versus",
	"better", "contrast", "distinguish", "differentiate",
	"pros and cons", "advantages", "disadvantages", "benefits",
	"between", "differ",
}

// Classify returns the question's kind.
func Classify(question string) Kind {
	lower := strings.ToLower(question)
	for _, kw := range ComparisonKeywords {
		if strings.Contains(lower, kw) {
			return KindComparison
		}
	}
	return KindGeneral
}

// TableDirective is appended to comparison questions. The responder may
// ignore it, so callers must still handle a prose answer.
const TableDirective = `IMPORTANT: Provide your answer ONLY as a markdown table with clear side-by-side comparison.
Format like this:

| Feature/Aspect | First Item | Second Item |
|----------------|------------|-------------|
| Category 1     | Details    | Details     |
| Category 2     | Details    | Details     |
| Category 3     | Details    | Details     |

Do NOT write paragraphs. ONLY respond with the comparison table.`

// BuildPrompt returns the text actually sent for question.
func BuildPrompt(question string, kind Kind) string {
	if kind != KindComparison {
		return question
	}
	return question + "\n\n" + TableDirective + "\n"
}
