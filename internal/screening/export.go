package screening

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const (
	screeningDateLayout = "2006-01-02 15:04:05"
	fileDateLayout      = "20060102"

	StatusComplete   = "Complete"
	StatusIncomplete = "Incomplete"
)

//go:embed export.schema.json
var exportSchemaJSON string

var exportSchema = gojsonschema.NewStringLoader(exportSchemaJSON)

// Document is the export handed to the recruitment team.
type Document struct {
	Metadata      Metadata      `json:"metadata"`
	CandidateData CandidateData `json:"candidate_data"`
}

// Metadata summarises a screening.
type Metadata struct {
	ScreeningDate     string `json:"screening_date"`
	CompletionStatus  string `json:"completion_status"`
	TotalQuestions    int    `json:"total_questions"`
	AnsweredQuestions int    `json:"answered_questions"`
}

// CandidateData carries everything the candidate provided.
type CandidateData struct {
	PersonalInfo     map[Field]string  `json:"personal_info"`
	TechnicalAnswers map[string]string `json:"technical_answers"`
	QuestionsAsked   []string          `json:"questions_asked"`
}

// Export builds the export document for the current state.
func (s *Session) Export() Document {
	return NewDocument(&s.state)
}

// NewDocument builds the export document for st. The screening date is the
// time the screening started.
func NewDocument(st *State) Document {
	asked := append([]string{}, st.Questions()...)

	doc := Document{
		Metadata: Metadata{
			ScreeningDate:     st.StartedAt.Format(screeningDateLayout),
			CompletionStatus:  StatusIncomplete,
			TotalQuestions:    len(asked),
			AnsweredQuestions: len(st.Answers),
		},
		CandidateData: CandidateData{
			PersonalInfo:     make(map[Field]string, len(st.Collected)),
			TechnicalAnswers: make(map[string]string, len(st.Answers)),
			QuestionsAsked:   asked,
		},
	}
	if st.Step.Name() == StepComplete {
		doc.Metadata.CompletionStatus = StatusComplete
	}
	for _, e := range st.Collected {
		doc.CandidateData.PersonalInfo[e.Field] = e.Value
	}
	for _, a := range st.Answers {
		doc.CandidateData.TechnicalAnswers[a.Question] = a.Answer
	}
	return doc
}

// SchemaError lists the schema violations of an export document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("export does not match schema: %s", strings.Join(e.Violations, "; "))
}

// ValidateExport checks doc against the embedded export schema. A mismatch
// is reported as *SchemaError.
func ValidateExport(doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	res, err := gojsonschema.Validate(exportSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating export: %w", err)
	}
	if res.Valid() {
		return nil
	}
	serr := &SchemaError{}
	for _, e := range res.Errors() {
		serr.Violations = append(serr.Violations, e.Field()+": "+e.Description())
	}
	return serr
}

// FileName returns the conventional export file name, such as
// screening_John_Doe_20240131.json. A missing name becomes "candidate".
func FileName(doc Document, now time.Time) string {
	name := strings.TrimSpace(doc.CandidateData.PersonalInfo[FullName])
	if name == "" {
		name = "candidate"
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("screening_%s_%s.json", name, now.Format(fileDateLayout))
}
