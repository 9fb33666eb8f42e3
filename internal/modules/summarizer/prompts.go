package summarizer

import "strings"

// Style selects the prompt template.
type Style string

const (
	StyleBrief    Style = "brief"
	StyleStandard Style = "standard"
	StyleDetailed Style = "detailed"
	StyleBullet   Style = "bullet"
	StyleAcademic Style = "academic"
)

var promptTemplates = map[Style]string{
	StyleBrief:    "Provide a very concise 3-sentence summary of the following document.",
	StyleStandard: "Summarize the following document into exactly 5 clear, informative bullet points.",
	StyleDetailed: "Provide a comprehensive 8-point summary with detailed insights from this document.",
	StyleBullet:   "Create a structured bullet-point summary with main topics and sub-points from this document.",
	StyleAcademic: "Provide an academic-style summary with introduction, key findings, methodology, and conclusion.",
}

// ParseStyle maps a request value to a Style; unknown values become StyleStandard.
func ParseStyle(raw string) Style {
	s := Style(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := promptTemplates[s]; ok {
		return s
	}
	return StyleStandard
}

// Styles lists every supported style.
func Styles() []Style {
	return []Style{StyleBrief, StyleStandard, StyleDetailed, StyleBullet, StyleAcademic}
}

// BuildPrompt joins the style template and the document text.
func BuildPrompt(style Style, text string) string {
	tmpl, ok := promptTemplates[style]
	if !ok {
		tmpl = promptTemplates[StyleStandard]
	}
	return tmpl + "\n\n" + text
}
