package screening

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kalambet/talentscout/internal/engine"
)

// Entry is one collected field value.
type Entry struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// Answer is the candidate's answer to one technical question.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// State is the complete state of one screening conversation.
type State struct {
	Step      Step
	Collected []Entry
	Answers   []Answer
	// History is renderer context only; no decision reads it.
	History   []engine.Message
	StartedAt time.Time
}

func newState(now time.Time) State {
	return State{Step: Greeting{}, StartedAt: now}
}

// Value returns the collected value for f.
func (s *State) Value(f Field) (string, bool) {
	for _, e := range s.Collected {
		if e.Field == f {
			return e.Value, true
		}
	}
	return "", false
}

// Questions returns the generated questions, or nil before they exist.
func (s State) Questions() []string {
	return questionsOf(s.Step)
}

func (s State) clone() State {
	c := s
	c.Collected = append([]Entry(nil), s.Collected...)
	c.Answers = append([]Answer(nil), s.Answers...)
	c.History = append([]engine.Message(nil), s.History...)
	switch st := s.Step.(type) {
	case TechnicalQuestions:
		st.Questions = append([]string(nil), st.Questions...)
		c.Step = st
	case Complete:
		st.Questions = append([]string(nil), st.Questions...)
		c.Step = st
	}
	return c
}

type stepJSON struct {
	Kind      StepName `json:"kind"`
	Cursor    int      `json:"cursor,omitempty"`
	Questions []string `json:"questions,omitempty"`
	Exited    bool     `json:"exited,omitempty"`
}

type stateJSON struct {
	Step      stepJSON         `json:"step"`
	Collected []Entry          `json:"collected"`
	Answers   []Answer         `json:"answers"`
	History   []engine.Message `json:"history"`
	StartedAt time.Time        `json:"started_at"`
}

// MarshalJSON encodes the step variant with a kind discriminator.
func (s State) MarshalJSON() ([]byte, error) {
	var sj stepJSON
	switch st := s.Step.(type) {
	case Greeting:
		sj = stepJSON{Kind: StepGreeting}
	case CollectingInfo:
		sj = stepJSON{Kind: StepCollectingInfo, Cursor: st.Cursor}
	case TechnicalQuestions:
		sj = stepJSON{Kind: StepTechnicalQuestions, Cursor: st.Cursor, Questions: st.Questions}
	case Complete:
		sj = stepJSON{Kind: StepComplete, Questions: st.Questions, Exited: st.Exited}
	default:
		return nil, fmt.Errorf("marshal state: unknown step %T", s.Step)
	}
	return json.Marshal(stateJSON{
		Step:      sj,
		Collected: s.Collected,
		Answers:   s.Answers,
		History:   s.History,
		StartedAt: s.StartedAt,
	})
}

// UnmarshalJSON decodes a state and rejects cursors or stores that no
// sequence of turns could have produced.
func (s *State) UnmarshalJSON(data []byte) error {
	var sj stateJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}

	var st Step
	switch sj.Step.Kind {
	case StepGreeting:
		if len(sj.Collected) != 0 || len(sj.Answers) != 0 {
			return fmt.Errorf("unmarshal state: greeting with collected data")
		}
		st = Greeting{}
	case StepCollectingInfo:
		c := sj.Step.Cursor
		if c < 0 || c >= len(Fields) || len(sj.Collected) != c || len(sj.Answers) != 0 {
			return fmt.Errorf("unmarshal state: field cursor %d inconsistent with %d collected values", c, len(sj.Collected))
		}
		st = CollectingInfo{Cursor: c}
	case StepTechnicalQuestions:
		c := sj.Step.Cursor
		if len(sj.Collected) != len(Fields) || c < 0 || c >= len(sj.Step.Questions) || len(sj.Answers) != c {
			return fmt.Errorf("unmarshal state: question cursor %d inconsistent with %d answers", c, len(sj.Answers))
		}
		st = TechnicalQuestions{Questions: sj.Step.Questions, Cursor: c}
	case StepComplete:
		if len(sj.Answers) > len(sj.Step.Questions) || len(sj.Collected) > len(Fields) {
			return fmt.Errorf("unmarshal state: more answers than questions")
		}
		st = Complete{Questions: sj.Step.Questions, Exited: sj.Step.Exited}
	default:
		return fmt.Errorf("unmarshal state: unknown step kind %q", sj.Step.Kind)
	}

	for i, e := range sj.Collected {
		if e.Field != Fields[i] {
			return fmt.Errorf("unmarshal state: collected field %d is %q, want %q", i, e.Field, Fields[i])
		}
	}

	*s = State{
		Step:      st,
		Collected: sj.Collected,
		Answers:   sj.Answers,
		History:   sj.History,
		StartedAt: sj.StartedAt,
	}
	return nil
}

// Snapshot is the read-only view of a screening returned after each turn.
type Snapshot struct {
	Step            StepName         `json:"step"`
	FieldCursor     int              `json:"field_cursor"`
	PendingField    Field            `json:"pending_field,omitempty"`
	QuestionCursor  int              `json:"question_cursor"`
	TotalQuestions  int              `json:"total_questions"`
	CurrentQuestion string           `json:"current_question,omitempty"`
	CollectedData   map[Field]string `json:"collected_data"`
	Answers         []Answer         `json:"answers"`
	IsComplete      bool             `json:"is_complete"`
	Exited          bool             `json:"exited,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
}

// Snapshot derives the read-only view of s.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Step:           s.Step.Name(),
		FieldCursor:    len(s.Collected),
		QuestionCursor: len(s.Answers),
		CollectedData:  make(map[Field]string, len(s.Collected)),
		Answers:        append([]Answer{}, s.Answers...),
		StartedAt:      s.StartedAt,
	}
	for _, e := range s.Collected {
		snap.CollectedData[e.Field] = e.Value
	}

	switch st := s.Step.(type) {
	case CollectingInfo:
		snap.FieldCursor = st.Cursor
		snap.PendingField = st.Pending()
	case TechnicalQuestions:
		snap.QuestionCursor = st.Cursor
		snap.TotalQuestions = len(st.Questions)
		snap.CurrentQuestion = st.Current()
	case Complete:
		snap.TotalQuestions = len(st.Questions)
		snap.IsComplete = true
		snap.Exited = st.Exited
	}
	return snap
}
