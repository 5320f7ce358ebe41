package responder

import (
	"github.com/kalambet/talentscout/internal/engine"
)

// Greeting opens every screening.
const Greeting = `👋 Hello! I'm TalentScout AI Assistant from TalentScout Recruitment.

I'm here to conduct an initial technical screening for technology positions. I'll chat with you to collect your information and then ask some technical questions based on your skills.

This should take about 10-15 minutes. Ready to get started?`

const personaPrompt = `You are TalentScout AI Assistant, a friendly and professional technical recruiter conducting initial candidate screening.

Your role:
1. Collect candidate information: full name, email, phone, years of experience, desired position, location, and detailed tech stack
2. Generate 5 tailored technical questions based on the candidate's tech stack
3. Ask technical questions one by one and evaluate answers
4. Be conversational, friendly, and professional
5. Handle clarifications and follow-up questions naturally
6. Stay focused on the screening purpose but be helpful and engaging

Guidelines:
- Be warm and encouraging
- Ask for clarification when answers are unclear
- Acknowledge good answers
- If someone asks you something off-topic, politely redirect them back to the screening
- If someone asks your name, respond naturally: "I'm TalentScout AI Assistant"
- Maintain conversation context throughout
- End gracefully when screening is complete or user wants to exit`

// Prompt is everything the renderer may use to phrase one reply.
type Prompt struct {
	// Step and Outcome are the post-turn step name and the turn outcome.
	Step    string
	Outcome string

	// Instruction tells the model what this reply has to achieve.
	Instruction string

	PendingField   string // label of the field still awaited
	Reason         string // rejection reason, if any
	QuestionIndex  int    // zero-based index of the question to ask
	Question       string
	TotalQuestions int
	Answered       int
	CandidateName  string
	Exited         bool

	History []engine.Message
	Input   string
}

// BuildMessages constructs the chat messages for a reply: persona, the
// current instruction, then the recent history.
func BuildMessages(p Prompt) []engine.Message {
	msgs := make([]engine.Message, 0, len(p.History)+2)
	msgs = append(msgs,
		engine.Message{Role: engine.RoleSystem, Content: personaPrompt},
		engine.Message{Role: engine.RoleSystem, Content: "Current context: " + p.Instruction},
	)
	return append(msgs, p.History...)
}
