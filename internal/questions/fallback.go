package questions

import "strings"

// byTechnology maps a lower-cased technology name to its fixed question.
var byTechnology = map[string]string{
	"python":     "Describe your experience with Python and explain a challenging problem you solved using it.",
	"django":     "How do you structure a Django project and handle database migrations?",
	"react":      "Explain your approach to state management in React applications.",
	"javascript": "What JavaScript ES6+ features do you use most and why?",
	"postgresql": "How do you optimize PostgreSQL queries for better performance?",
	"docker":     "Describe how you use Docker in your development workflow.",
}

var generalPool = []string{
	"What's your approach to writing clean, maintainable code?",
	"How do you debug complex technical issues?",
	"Describe your experience with version control and team collaboration.",
	"How do you stay updated with new technologies?",
	"Tell me about a project you're proud of and your role in it.",
}

// Fallback picks the technology-specific questions for technologies, in the
// given order, then fills from the general pool up to Count.
func Fallback(technologies []string) []string {
	out := make([]string, 0, Count)
	for _, tech := range technologies {
		if q, ok := byTechnology[strings.ToLower(tech)]; ok {
			out = append(out, q)
		}
	}
	out = append(out, generalPool...)
	return out[:Count]
}
