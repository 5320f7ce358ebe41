package screening

// StepName identifies a screening step on the wire.
type StepName string

const (
	StepGreeting           StepName = "greeting"
	StepCollectingInfo     StepName = "collecting_info"
	StepTechnicalQuestions StepName = "technical_questions"
	StepComplete           StepName = "complete"
)

// Step is the current position of a screening. The implementations below are
// the only ones; each carries just what its step needs.
type Step interface {
	Name() StepName
	step()
}

// Greeting is the initial step, before the candidate has replied.
type Greeting struct{}

// CollectingInfo awaits the value for Fields[Cursor].
type CollectingInfo struct {
	Cursor int
}

// Pending returns the field being asked for.
func (c CollectingInfo) Pending() Field { return Fields[c.Cursor] }

// TechnicalQuestions awaits the answer to Questions[Cursor].
type TechnicalQuestions struct {
	Questions []string
	Cursor    int
}

// Current returns the question being asked.
func (t TechnicalQuestions) Current() string { return t.Questions[t.Cursor] }

// Complete is terminal. Exited is set when the candidate left early.
type Complete struct {
	Questions []string
	Exited    bool
}

func (Greeting) Name() StepName           { return StepGreeting }
func (CollectingInfo) Name() StepName     { return StepCollectingInfo }
func (TechnicalQuestions) Name() StepName { return StepTechnicalQuestions }
func (Complete) Name() StepName           { return StepComplete }

func (Greeting) step()           {}
func (CollectingInfo) step()     {}
func (TechnicalQuestions) step() {}
func (Complete) step()           {}

// questionsOf returns the question set carried by st, if any.
func questionsOf(st Step) []string {
	switch s := st.(type) {
	case TechnicalQuestions:
		return s.Questions
	case Complete:
		return s.Questions
	}
	return nil
}
