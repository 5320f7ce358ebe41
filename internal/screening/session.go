// Package screening runs the scripted candidate screening: it collects the
// candidate's details, asks technical questions and tracks progress.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/talentscout/internal/engine"
	"github.com/kalambet/talentscout/internal/questions"
	"github.com/kalambet/talentscout/internal/responder"
	"github.com/kalambet/talentscout/internal/techstack"
)

// ErrExternalUnavailable wraps every text-generation failure. Such failures
// are absorbed by the templated fallback and never reach the caller.
var ErrExternalUnavailable = engine.ErrUnavailable

var errUnexpectedStep = errors.New("unexpected step")

// Outcome classifies what a turn did.
type Outcome string

const (
	OutcomeStarted         Outcome = "started"
	OutcomeAccepted        Outcome = "accepted"
	OutcomeRejected        Outcome = "rejected"
	OutcomeOffTopic        Outcome = "off_topic"
	OutcomeTooBrief        Outcome = "too_brief"
	OutcomeQuestionsReady  Outcome = "questions_ready"
	OutcomeCompleted       Outcome = "completed"
	OutcomeExited          Outcome = "exited"
	OutcomeAfterCompletion Outcome = "after_completion"
	OutcomeUnexpected      Outcome = "unexpected"
)

// Fallback kinds reported to the Observer.
const (
	FallbackReply     = "reply"
	FallbackQuestions = "questions"
)

// QuestionSource produces the technical questions for a tech stack.
type QuestionSource interface {
	Generate(ctx context.Context, techStack string) questions.Result
}

// Renderer phrases a reply.
type Renderer interface {
	Respond(ctx context.Context, p responder.Prompt) responder.Reply
}

// Observer is told about every turn and every templated fallback.
type Observer interface {
	ObserveTurn(step StepName, outcome Outcome)
	ObserveFallback(kind string)
}

// Deps are the collaborators of a Session. Zero values select the defaults:
// DefaultPolicy, fallback-only questions and template-only replies.
type Deps struct {
	Policy    *Policy
	Questions QuestionSource
	Renderer  Renderer
	Observer  Observer
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Policy == nil {
		d.Policy = DefaultPolicy()
	}
	if d.Questions == nil {
		d.Questions = questions.NewGenerator(nil, "", 0)
	}
	if d.Renderer == nil {
		d.Renderer = responder.New(nil, "", 0)
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type nopObserver struct{}

func (nopObserver) ObserveTurn(StepName, Outcome) {}
func (nopObserver) ObserveFallback(string)        {}

// Reply is the result of one turn.
type Reply struct {
	Message   string           `json:"message"`
	Outcome   Outcome          `json:"outcome"`
	Rejection *ValidationError `json:"rejection,omitempty"`
	Fallback  bool             `json:"fallback"`
	Snapshot  Snapshot         `json:"state"`
}

// Session is one screening conversation. It is not safe for concurrent use;
// callers serialise turns of the same session.
type Session struct {
	deps  Deps
	state State
}

// NewSession creates a session at the greeting step.
func NewSession(deps Deps) *Session {
	deps = deps.withDefaults()
	return &Session{deps: deps, state: newState(deps.Now())}
}

// Restore creates a session continuing from state.
func Restore(deps Deps, state State) *Session {
	deps = deps.withDefaults()
	if state.Step == nil {
		state.Step = Greeting{}
	}
	return &Session{deps: deps, state: state}
}

// Greeting returns the opening message.
func (s *Session) Greeting() string {
	return responder.Greeting
}

// Reset replaces the whole state with a fresh one and returns the greeting.
func (s *Session) Reset() string {
	s.state = newState(s.deps.Now())
	return s.Greeting()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state.clone()
}

// Snapshot returns the read-only view of the current state.
func (s *Session) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// turn is what a step handler decided, before rendering.
type turn struct {
	outcome     Outcome
	instruction string
	rejection   *ValidationError
}

// Handle processes one candidate message. It never fails: invalid input is
// re-prompted, collaborator failures fall back to templates and anything
// unexpected leaves the state as it was before the turn.
func (s *Session) Handle(ctx context.Context, input string) (reply Reply) {
	input = strings.TrimSpace(input)
	before := s.state.clone()

	defer func() {
		if r := recover(); r != nil {
			reply = s.unexpected(before, fmt.Errorf("panic: %v", r))
		}
	}()

	s.appendHistory(engine.RoleUser, input)

	t, err := s.route(ctx, input)
	if err != nil {
		return s.unexpected(before, err)
	}

	rendered := s.deps.Renderer.Respond(ctx, s.prompt(t, input))
	if rendered.Fallback {
		s.deps.Observer.ObserveFallback(FallbackReply)
		slog.Debug("templated reply", "step", s.state.Step.Name(), "cause", rendered.Err)
	}
	s.appendHistory(engine.RoleAssistant, rendered.Text)
	s.deps.Observer.ObserveTurn(s.state.Step.Name(), t.outcome)

	return Reply{
		Message:   rendered.Text,
		Outcome:   t.outcome,
		Rejection: t.rejection,
		Fallback:  rendered.Fallback,
		Snapshot:  s.state.Snapshot(),
	}
}

func (s *Session) unexpected(before State, cause error) Reply {
	slog.Error("screening turn failed, state restored", "step", before.Step.Name(), "error", cause)
	s.state = before
	s.deps.Observer.ObserveTurn(before.Step.Name(), OutcomeUnexpected)
	s.deps.Observer.ObserveFallback(FallbackReply)
	return Reply{
		Message:  responder.TroubleText,
		Outcome:  OutcomeUnexpected,
		Fallback: true,
		Snapshot: before.Snapshot(),
	}
}

func (s *Session) route(ctx context.Context, input string) (turn, error) {
	policy := s.deps.Policy

	if policy.IsExit(input) {
		return s.exit(), nil
	}

	switch st := s.state.Step.(type) {
	case Greeting:
		s.state.Step = CollectingInfo{Cursor: 0}
		return turn{outcome: OutcomeStarted, instruction: greetedInstruction()}, nil
	case CollectingInfo:
		return s.collect(ctx, st, input), nil
	case TechnicalQuestions:
		return s.answer(st, input), nil
	case Complete:
		return turn{outcome: OutcomeAfterCompletion, instruction: afterCompletionInstruction(input)}, nil
	default:
		return turn{}, fmt.Errorf("%w: %T", errUnexpectedStep, s.state.Step)
	}
}

func (s *Session) exit() turn {
	t := turn{outcome: OutcomeExited, instruction: exitInstruction(&s.state)}
	if _, done := s.state.Step.(Complete); !done {
		s.state.Step = Complete{Questions: s.state.Questions(), Exited: true}
	}
	return t
}

func (s *Session) collect(ctx context.Context, st CollectingInfo, input string) turn {
	policy := s.deps.Policy
	field := st.Pending()

	if policy.IsOffTopic(input) {
		return turn{outcome: OutcomeOffTopic, instruction: offTopicFieldInstruction(input, field, &s.state)}
	}

	if err := policy.Validate(field, input); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			verr = &ValidationError{Field: field, Value: input, Reason: err.Error()}
		}
		return turn{outcome: OutcomeRejected, instruction: rejectedInstruction(verr), rejection: verr}
	}

	s.state.Collected = append(s.state.Collected, Entry{Field: field, Value: input})

	next := st.Cursor + 1
	if next < len(Fields) {
		s.state.Step = CollectingInfo{Cursor: next}
		return turn{outcome: OutcomeAccepted, instruction: acceptedFieldInstruction(field, input, Fields[next])}
	}

	stack, _ := s.state.Value(TechStack)
	qs := s.generateQuestions(ctx, stack)
	s.state.Step = TechnicalQuestions{Questions: qs, Cursor: 0}
	return turn{outcome: OutcomeQuestionsReady, instruction: questionsReadyInstruction(stack, qs)}
}

func (s *Session) generateQuestions(ctx context.Context, stack string) []string {
	res := s.deps.Questions.Generate(ctx, stack)
	if !usableQuestions(res.Questions) {
		slog.Warn("question source returned an unusable set, using fallback", "count", len(res.Questions))
		res = questions.Result{
			Questions: questions.Fallback(techstack.Parse(stack)),
			Source:    questions.SourceFallback,
		}
	}
	if res.Source == questions.SourceFallback {
		s.deps.Observer.ObserveFallback(FallbackQuestions)
	}
	return append([]string(nil), res.Questions...)
}

func usableQuestions(qs []string) bool {
	if len(qs) != questions.Count {
		return false
	}
	for _, q := range qs {
		if strings.TrimSpace(q) == "" {
			return false
		}
	}
	return true
}

func (s *Session) answer(st TechnicalQuestions, input string) turn {
	policy := s.deps.Policy
	question := st.Current()

	if policy.IsOffTopic(input) {
		return turn{outcome: OutcomeOffTopic, instruction: offTopicQuestionInstruction(input, question)}
	}
	if policy.IsTooBrief(input) {
		return turn{outcome: OutcomeTooBrief, instruction: tooBriefInstruction(input, question)}
	}

	s.state.Answers = append(s.state.Answers, Answer{Question: question, Answer: input})

	next := st.Cursor + 1
	if next < len(st.Questions) {
		s.state.Step = TechnicalQuestions{Questions: st.Questions, Cursor: next}
		return turn{
			outcome:     OutcomeAccepted,
			instruction: nextQuestionInstruction(input, next, len(st.Questions), st.Questions[next]),
		}
	}

	s.state.Step = Complete{Questions: st.Questions}
	name, _ := s.state.Value(FullName)
	return turn{outcome: OutcomeCompleted, instruction: completedInstruction(name)}
}

func (s *Session) prompt(t turn, input string) responder.Prompt {
	snap := s.state.Snapshot()
	name, _ := s.state.Value(FullName)

	p := responder.Prompt{
		Step:           string(snap.Step),
		Outcome:        string(t.outcome),
		Instruction:    t.instruction,
		QuestionIndex:  snap.QuestionCursor,
		Question:       snap.CurrentQuestion,
		TotalQuestions: snap.TotalQuestions,
		Answered:       len(s.state.Answers),
		CandidateName:  name,
		Exited:         snap.Exited,
		History:        s.window(),
		Input:          input,
	}
	if snap.PendingField != "" {
		p.PendingField = snap.PendingField.Label()
	}
	if t.rejection != nil {
		p.Reason = t.rejection.Reason
	}
	return p
}

// window returns the most recent history entries the renderer may see.
func (s *Session) window() []engine.Message {
	h := s.state.History
	if n := s.deps.Policy.RenderWindow; len(h) > n {
		h = h[len(h)-n:]
	}
	return append([]engine.Message(nil), h...)
}

func (s *Session) appendHistory(role, content string) {
	s.state.History = append(s.state.History, engine.Message{Role: role, Content: content})
	if limit := s.deps.Policy.HistoryLimit; len(s.state.History) > limit {
		s.state.History = append([]engine.Message(nil), s.state.History[len(s.state.History)-limit:]...)
	}
}
