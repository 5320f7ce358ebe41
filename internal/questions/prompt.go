package questions

import (
	"fmt"
	"strings"

	"github.com/kalambet/talentscout/internal/engine"
	"github.com/kalambet/talentscout/internal/techstack"
)

const systemPrompt = "You are an expert technical recruiter. Generate specific, relevant interview questions."

const userPromptTemplate = `Generate exactly %d technical interview questions for a candidate with this tech stack: %s

Key technologies identified: %s

Requirements:
- Create specific questions for the mentioned technologies
- Cover different aspects: coding, architecture, debugging, best practices
- Appropriate for initial screening
- Mix practical and conceptual questions

Return ONLY the %d questions, one per line, no numbering or formatting.`

// BuildPrompt constructs the chat messages asking the model for Count questions.
func BuildPrompt(techStack string) []engine.Message {
	techList := techStack
	if found := techstack.Parse(techStack); len(found) > 0 {
		techList = strings.Join(found, ", ")
	}
	return []engine.Message{
		{Role: engine.RoleSystem, Content: systemPrompt},
		{Role: engine.RoleUser, Content: fmt.Sprintf(userPromptTemplate, Count, techStack, techList, Count)},
	}
}
