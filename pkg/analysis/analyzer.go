// Package analysis scores CV content with keyword heuristics. Scoring is
// pure and deterministic: section order is fixed, so the same content always
// produces the same feedback string.
package analysis

import (
	"strings"
	"unicode"

	"github.com/cvault/cvault/pkg/entity"
)

// SectionScore grades one section on a 0..10 scale.
type SectionScore struct {
	Score       float64  `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Result is the full analysis of one CV.
type Result struct {
	TotalScore           float64                 `json:"total_score"`
	Sections             map[string]SectionScore `json:"section_scores"`
	PriorityImprovements []string                `json:"priority_improvements"`
	OverallFeedback      string                  `json:"overall_feedback"`
}

// sectionOrder fixes the iteration order for score aggregation and feedback
// assembly.
var sectionOrder = []string{"contact", "summary", "experience", "education", "skills", "format"}

var sectionWeights = map[string]float64{
	"contact":    0.10,
	"summary":    0.15,
	"experience": 0.25,
	"education":  0.20,
	"skills":     0.20,
	"format":     0.10,
}

var (
	skillKeywords      = []string{"experience with", "proficient in", "skills", "expertise"}
	experienceKeywords = []string{"work experience", "employment", "position", "role"}
)

const maxPriorityImprovements = 5

// Analyze scores the CV's content section by section.
func Analyze(cv *entity.CV) *Result {
	content := cv.Content
	lower := strings.ToLower(content)

	sections := map[string]SectionScore{
		"contact":    analyzeContact(content, lower),
		"summary":    {Score: 7.0, Feedback: "Summary section is present"},
		"experience": analyzeExperience(content, lower),
		"education":  {Score: 7.0, Feedback: "Education section is present"},
		"skills":     analyzeSkills(content, lower),
		"format":     {Score: 7.0, Feedback: "Format is acceptable"},
	}

	var total float64
	for _, name := range sectionOrder {
		total += sections[name].Score * sectionWeights[name]
	}

	return &Result{
		TotalScore:           total,
		Sections:             sections,
		PriorityImprovements: priorityImprovements(sections),
		OverallFeedback:      overallFeedback(sections, total),
	}
}

func analyzeContact(content, lower string) SectionScore {
	var score float64
	var suggestions []string

	if strings.Contains(lower, "@") {
		score += 3.0
	} else {
		suggestions = append(suggestions, "Add an email address")
	}
	if digitCount(content) >= 10 {
		score += 3.0
	} else {
		suggestions = append(suggestions, "Add a phone number")
	}
	if strings.Contains(lower, "address") || strings.Contains(lower, "location") {
		score += 4.0
	} else {
		suggestions = append(suggestions, "Add your location")
	}

	feedback := "Contact information needs improvement"
	if score >= 8.0 {
		feedback = "Contact information is well-structured"
	}
	return SectionScore{Score: score, Feedback: feedback, Suggestions: suggestions}
}

func analyzeExperience(content, lower string) SectionScore {
	var score float64
	var suggestions []string

	for _, kw := range experienceKeywords {
		if strings.Contains(lower, kw) {
			score += 2.0
		}
	}

	if yearCount(content) >= 2 {
		score += 3.0
	} else {
		suggestions = append(suggestions, "Add dates to your work experience")
	}

	if strings.ContainsRune(content, '•') || strings.ContainsRune(content, '-') ||
		strings.Contains(content, ". ") {
		score += 2.0
	} else {
		suggestions = append(suggestions, "Use bullet points to describe your experiences")
	}

	if score > 10.0 {
		score = 10.0
	}
	feedback := "Experience section needs more detail"
	if score >= 7.0 {
		feedback = "Experience section is detailed"
	}
	return SectionScore{Score: score, Feedback: feedback, Suggestions: suggestions}
}

func analyzeSkills(content, lower string) SectionScore {
	var score float64
	var suggestions []string

	hasSkills := false
	for _, kw := range skillKeywords {
		if strings.Contains(lower, kw) {
			hasSkills = true
			break
		}
	}
	if hasSkills {
		score += 5.0
	} else {
		suggestions = append(suggestions, "Add a dedicated skills section")
	}

	if strings.ContainsRune(content, ':') || strings.ContainsRune(content, '•') {
		score += 3.0
	} else {
		suggestions = append(suggestions, "Categorize your skills")
	}

	if len(strings.Fields(content)) >= 15 {
		score += 2.0
	} else {
		suggestions = append(suggestions, "List more relevant skills")
	}

	feedback := "Skills section needs better organization"
	if score >= 8.0 {
		feedback = "Skills section is well-organized"
	}
	return SectionScore{Score: score, Feedback: feedback, Suggestions: suggestions}
}

func priorityImprovements(sections map[string]SectionScore) []string {
	var improvements []string
	for _, name := range sectionOrder {
		s := sections[name]
		if s.Score < 7.0 {
			improvements = append(improvements, s.Suggestions...)
		}
	}
	if len(improvements) > maxPriorityImprovements {
		improvements = improvements[:maxPriorityImprovements]
	}
	return improvements
}

func overallFeedback(sections map[string]SectionScore, total float64) string {
	var b strings.Builder
	switch {
	case total >= 8.0:
		b.WriteString("Your CV is well-structured and comprehensive. ")
	case total >= 6.0:
		b.WriteString("Your CV is good but has room for improvement. ")
	default:
		b.WriteString("Your CV needs significant improvements. ")
	}
	for _, name := range sectionOrder {
		s := sections[name]
		if s.Score < 7.0 {
			b.WriteString(s.Feedback)
			b.WriteString(". ")
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// digitCount counts decimal digits anywhere in the text.
func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// yearCount counts standalone four-digit runs, the usual shape of
// employment dates.
func yearCount(s string) int {
	n, run := 0, 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			run++
			continue
		}
		if run == 4 {
			n++
		}
		run = 0
	}
	if run == 4 {
		n++
	}
	return n
}
