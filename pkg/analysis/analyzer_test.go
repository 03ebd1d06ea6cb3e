package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvault/cvault/pkg/entity"
)

const strongCV = `John Smith
Email: john@example.com Phone: 061 234 5678 Location: Amsterdam

Work experience:
- Software engineer position at Acme, 2019 - 2023. Led the payments team.
- Support role at Widgets Inc, 2016 - 2019.

Skills: proficient in Go, SQL, Kubernetes. Expertise with distributed systems
and cloud infrastructure across many production environments.`

func TestAnalyzeStrongCV(t *testing.T) {
	result := Analyze(&entity.CV{Content: strongCV})

	assert.GreaterOrEqual(t, result.Sections["contact"].Score, 8.0)
	assert.GreaterOrEqual(t, result.Sections["experience"].Score, 7.0)
	assert.GreaterOrEqual(t, result.Sections["skills"].Score, 8.0)
	assert.GreaterOrEqual(t, result.TotalScore, 7.0)
	assert.Empty(t, result.PriorityImprovements)
	assert.Contains(t, result.OverallFeedback, "well-structured")
}

func TestAnalyzeWeakCV(t *testing.T) {
	result := Analyze(&entity.CV{Content: "i can do things"})

	contact := result.Sections["contact"]
	assert.Zero(t, contact.Score)
	assert.Contains(t, contact.Suggestions, "Add an email address")
	assert.Contains(t, contact.Suggestions, "Add a phone number")
	assert.Contains(t, contact.Suggestions, "Add your location")

	assert.Less(t, result.TotalScore, 6.0)
	assert.Contains(t, result.OverallFeedback, "significant improvements")
	require.NotEmpty(t, result.PriorityImprovements)
	assert.LessOrEqual(t, len(result.PriorityImprovements), maxPriorityImprovements)
}

func TestAnalyzeDeterministic(t *testing.T) {
	cv := &entity.CV{Content: "some middling resume with skills: Go and a role in 2020"}
	first := Analyze(cv)
	for i := 0; i < 5; i++ {
		again := Analyze(cv)
		assert.Equal(t, first.TotalScore, again.TotalScore)
		assert.Equal(t, first.OverallFeedback, again.OverallFeedback)
		assert.Equal(t, first.PriorityImprovements, again.PriorityImprovements)
	}
}

func TestYearCount(t *testing.T) {
	assert.Equal(t, 2, yearCount("2019 - 2023"))
	assert.Equal(t, 0, yearCount("12345 678"))
	assert.Equal(t, 1, yearCount("since 2020"))
	assert.Equal(t, 0, yearCount("no dates here"))
}

func TestTotalScoreWeighting(t *testing.T) {
	// Fixed-score sections alone: summary, education, format at 7.0 each.
	result := Analyze(&entity.CV{Content: ""})
	expected := 7.0*0.15 + 7.0*0.20 + 7.0*0.10
	assert.InDelta(t, expected, result.TotalScore, 1e-9)
}
