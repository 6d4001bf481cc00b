package narrative

import "strings"

// Fallbacks replaces narrative the extractor could not find.
type Fallbacks struct {
	Body  string
	Final string
	Steps []string
}

// DefaultFallbacks returns templated text addressed to firstName (which may
// be empty). None of it contains a heading phrase.
func DefaultFallbacks(firstName string) Fallbacks {
	firstName = strings.TrimSpace(firstName)
	lead := func(sentence string) string {
		if firstName == "" {
			return strings.ToUpper(sentence[:1]) + sentence[1:]
		}
		return firstName + ", " + sentence
	}
	return Fallbacks{
		Body: lead("this report brings together your behavioral style, your strongest " +
			"intelligences, your vocational interests and the archetypes that shape how " +
			"you show up at work. Read each page as a map of tendencies rather than a " +
			"verdict. Taken together, these results point to the settings where you are " +
			"most likely to thrive and to the habits worth developing over the coming months."),
		Final: lead("your results describe strengths you already have. Use them with " +
			"intention, keep learning, and come back to this report whenever your goals change."),
		Steps: []string{
			"Review the dominant style and top intelligences highlighted in this report.",
			"Pick one strength and apply it deliberately in a project this month.",
			"Talk with a mentor about the careers suggested by your interest code.",
			"Choose a short course or reading that develops a less dominant area.",
			"Revisit your career goals in three months and compare them with these results.",
		},
	}
}
