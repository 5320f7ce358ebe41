package screening

import (
	"fmt"
	"strings"
)

func collectedLabels(entries []Entry) string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Field.Label()
	}
	if len(labels) == 0 {
		return "nothing yet"
	}
	return strings.Join(labels, ", ")
}

func greetedInstruction() string {
	return "The candidate has responded to your greeting. Now naturally transition to asking for their full name. Be friendly and conversational."
}

func exitInstruction(s *State) string {
	return fmt.Sprintf(`The candidate wants to exit. Current progress:
- Information collected: %s
- Technical questions answered: %d

Generate a warm goodbye message. If they completed the screening, thank them and explain next steps (review within 24-48 hours, contact within 2-3 business days). If incomplete, thank them for their time and invite them to return.`,
		collectedLabels(s.Collected), len(s.Answers))
}

func offTopicFieldInstruction(input string, pending Field, s *State) string {
	return fmt.Sprintf(`The candidate asked you: %q

This seems like a question about you or something off-topic. Answer it naturally and briefly, then gently guide them back to the screening.

Currently waiting for: %s
Already collected: %s

Be helpful but keep the screening on track.`, input, pending.Label(), collectedLabels(s.Collected))
}

func rejectedInstruction(verr *ValidationError) string {
	return fmt.Sprintf(`The candidate provided: %q for their %s.

This is invalid because: %s

Politely point out the issue and ask them to provide it again. Be friendly and helpful.`, verr.Value, verr.Field.Label(), verr.Reason)
}

func acceptedFieldInstruction(got Field, value string, next Field) string {
	return fmt.Sprintf(`Great! You just collected their %s: %q

Now ask for their %s.

Special instructions:
- If asking for tech stack: Ask them to provide detailed tech stack including programming languages, frameworks, databases, and tools. Be specific about wanting comprehensive information.
- Be conversational and natural
- Acknowledge what they just provided`, got.Label(), value, next.Label())
}

func questionsReadyInstruction(techStack string, qs []string) string {
	var list strings.Builder
	for i, q := range qs {
		fmt.Fprintf(&list, "%d. %s\n", i+1, q)
	}
	return fmt.Sprintf(`Perfect! You've collected all their information. Their tech stack is: %s

You've generated these %d technical questions:
%s
Now:
1. Let them know you're moving to technical questions
2. Briefly mention that you'll ask %d questions based on their tech stack
3. Ask the FIRST question naturally

Be encouraging and set a positive tone for the technical assessment.`, techStack, len(qs), list.String(), len(qs))
}

func offTopicQuestionInstruction(input, question string) string {
	return fmt.Sprintf(`The candidate asked: %q instead of answering the technical question.

Current question: %s

Answer their question briefly and naturally, then guide them back to answering the technical question. Be friendly but keep focus on the screening.`, input, question)
}

func tooBriefInstruction(input, question string) string {
	return fmt.Sprintf(`The candidate gave a very short answer: %q to the question: %q

This is too brief to assess their skills. Politely ask them to elaborate with:
- Specific examples from their experience
- Technical details
- Challenges and solutions

Be encouraging and supportive.`, input, question)
}

func nextQuestionInstruction(input string, answered, total int, next string) string {
	return fmt.Sprintf(`The candidate just answered: %q

That was question %d of %d.

Now:
1. Acknowledge their answer positively
2. Briefly comment on their answer if relevant
3. Mention it's question %d of %d
4. Ask the next question: %q

Be natural and encouraging.`, input, answered, total, answered+1, total, next)
}

func completedInstruction(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`The candidate (%s) has completed all technical questions!

Generate a warm completion message that:
1. Congratulates them on completing the screening
2. Thanks them for their time and detailed answers
3. Explains next steps:
   - Team will review within 24-48 hours
   - Recruiter will contact via email within 2-3 business days
   - May include technical interview or coding assessment
4. Wish them well

Be warm, professional, and encouraging.`, name)
}

func afterCompletionInstruction(input string) string {
	return fmt.Sprintf(`The screening is already complete. The candidate said: %q

Respond naturally. If they're asking a question, answer it. If they're saying goodbye, respond warmly. If they want to start over, suggest they can begin a new screening.

Be helpful and friendly.`, input)
}
