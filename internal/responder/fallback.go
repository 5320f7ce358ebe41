package responder

import (
	"bytes"
	"log/slog"
	"text/template"

	"github.com/Masterminds/sprig"
)

// TroubleText is the reply when nothing more specific applies.
const TroubleText = "I'm having trouble processing that. Could you please try again?"

const fallbackTemplates = `
{{- define "collecting_info" -}}
{{- if eq .Outcome "off_topic" -}}
I'm TalentScout AI Assistant, and I'm here to run your screening. Could you please provide your {{ .PendingField }}?
{{- else if .Reason -}}
Sorry, {{ .Reason }}. Could you please provide your {{ .PendingField }}?
{{- else -}}
Could you please provide your {{ .PendingField }}?
{{- end -}}
{{- end -}}

{{- define "technical_questions" -}}
{{- if eq .Outcome "questions_ready" -}}
Thank you, I have everything I need. I'll now ask you {{ .TotalQuestions }} technical questions based on your tech stack.

{{ end -}}
{{- if eq .Outcome "too_brief" -}}
Could you elaborate a bit more? Specific examples, technical details, challenges and solutions all help.

{{ end -}}
{{- if eq .Outcome "off_topic" -}}
Let's stay with the screening for now.

{{ end -}}
Question {{ add1 .QuestionIndex }}: {{ .Question }}
{{- end -}}

{{- define "complete" -}}
{{- if eq .Outcome "after_completion" -}}
Your screening is already complete. Start a new screening if you would like to go again.
{{- else if and .Exited (lt .Answered (default 5 .TotalQuestions)) -}}
Thank you for your time{{ with .CandidateName }}, {{ . }}{{ end }}. {{ if .Answered }}You answered {{ .Answered }} of {{ default 5 .TotalQuestions }} technical questions. {{ end }}You're welcome to come back and finish the screening at any time. Goodbye!
{{- else if eq .Outcome "exited" -}}
Thank you again{{ with .CandidateName }}, {{ . }}{{ end }}. Your screening is complete and a recruiter will be in touch within 2-3 business days. Goodbye!
{{- else -}}
Congratulations{{ with .CandidateName }}, {{ . }}{{ end }}, you have completed the screening! Thank you for your detailed answers. Our team will review them within 24-48 hours, and a recruiter will contact you by email within 2-3 business days about next steps, which may include a technical interview or coding assessment. Best of luck!
{{- end -}}
{{- end -}}
`

var fallbackTmpl = template.Must(template.New("fallback").Funcs(sprig.TxtFuncMap()).Parse(fallbackTemplates))

// Fallback renders the deterministic templated reply for p.
func Fallback(p Prompt) string {
	if p.Outcome == "unexpected" || fallbackTmpl.Lookup(p.Step) == nil {
		return TroubleText
	}
	if p.Step == "collecting_info" && p.PendingField == "" {
		return TroubleText
	}
	if p.Step == "technical_questions" && p.Question == "" {
		return TroubleText
	}

	var buf bytes.Buffer
	if err := fallbackTmpl.ExecuteTemplate(&buf, p.Step, p); err != nil {
		slog.Error("rendering fallback reply", "step", p.Step, "error", err)
		return TroubleText
	}
	return buf.String()
}
