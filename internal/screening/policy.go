package screening

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is the acceptance check for one field. A nil Pattern or a zero
// MinLength disables that part of the check.
type Rule struct {
	Pattern   *regexp.Regexp
	MinLength int
	Message   string
}

// Policy holds the heuristics that drive a screening: field rules, exit and
// off-topic detection, answer brevity and history bounds.
type Policy struct {
	Rules            map[Field]Rule
	ExitWords        []string
	QuestionStarters []string
	TopicKeywords    []string

	// MinAnswerWords is the word count below which an answer is too brief.
	MinAnswerWords int
	// HistoryLimit bounds the stored conversation history.
	HistoryLimit int
	// RenderWindow is how many history entries the renderer sees.
	RenderWindow int
}

// DefaultPolicy returns the stock screening heuristics.
func DefaultPolicy() *Policy {
	return &Policy{
		Rules: map[Field]Rule{
			Email: {
				Pattern: regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
				Message: "it doesn't appear to be a valid email format",
			},
			Phone: {
				Pattern: regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`),
				Message: "it should be a valid phone number with at least 10 digits",
			},
			YearsExperience: {
				Pattern: regexp.MustCompile(`^\d+\.?\d*$`),
				Message: "it should be a number (e.g., 5 or 3.5)",
			},
			FullName: {
				MinLength: 2,
				Message:   "it seems too short for a full name",
			},
			TechStack: {
				MinLength: 10,
				Message:   "please provide more details about your tech stack",
			},
		},
		ExitWords:        []string{"bye", "exit", "quit", "goodbye", "stop", "end"},
		QuestionStarters: []string{"what", "who", "how", "why", "when", "where", "can", "could", "would"},
		TopicKeywords:    []string{"name", "email", "phone", "experience", "position", "location", "tech", "skill"},
		MinAnswerWords:   5,
		HistoryLimit:     30,
		RenderWindow:     10,
	}
}

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field  Field  `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field.Label(), e.Value, e.Reason)
}

const emptyReason = "it can't be empty"

// Validate checks value (trimmed) against the rule for field. It returns a
// *ValidationError when the value is rejected.
func (p *Policy) Validate(field Field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &ValidationError{Field: field, Value: value, Reason: emptyReason}
	}
	rule, ok := p.Rules[field]
	if !ok {
		return nil
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return &ValidationError{Field: field, Value: value, Reason: rule.Message}
	}
	if rule.MinLength > 0 && len([]rune(value)) < rule.MinLength {
		return &ValidationError{Field: field, Value: value, Reason: rule.Message}
	}
	return nil
}

// IsExit reports whether any whitespace-separated token of input is an exit
// word. "weekend" does not contain the exit word "end".
func (p *Policy) IsExit(input string) bool {
	for _, tok := range strings.Fields(strings.ToLower(input)) {
		for _, w := range p.ExitWords {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// IsQuestion reports whether input contains '?' or opens with a question word.
func (p *Policy) IsQuestion(input string) bool {
	if strings.Contains(input, "?") {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, s := range p.QuestionStarters {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// IsOffTopic reports whether input is a question that mentions none of the
// screening topics.
func (p *Policy) IsOffTopic(input string) bool {
	if !p.IsQuestion(input) {
		return false
	}
	lower := strings.ToLower(input)
	for _, kw := range p.TopicKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// IsTooBrief reports whether answer has fewer than MinAnswerWords words.
func (p *Policy) IsTooBrief(answer string) bool {
	return len(strings.Fields(answer)) < p.MinAnswerWords
}

// policyFile is the YAML shape accepted by LoadPolicy. Omitted keys keep
// their defaults.
type policyFile struct {
	Rules map[Field]struct {
		Pattern   *string `yaml:"pattern"`
		MinLength *int    `yaml:"min_length"`
		Message   *string `yaml:"message"`
	} `yaml:"rules"`
	ExitWords        []string `yaml:"exit_words"`
	QuestionStarters []string `yaml:"question_starters"`
	TopicKeywords    []string `yaml:"topic_keywords"`
	MinAnswerWords   *int     `yaml:"min_answer_words"`
	HistoryLimit     *int     `yaml:"history_limit"`
	RenderWindow     *int     `yaml:"render_window"`
}

// LoadPolicy reads a YAML policy file and overlays it on DefaultPolicy.
// An empty path returns the defaults.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes YAML policy data over the defaults.
func ParsePolicy(data []byte) (*Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}

	p := DefaultPolicy()
	for field, r := range f.Rules {
		if !field.Valid() {
			return nil, fmt.Errorf("unknown field %q in rules", field)
		}
		rule := p.Rules[field]
		if r.Pattern != nil {
			if *r.Pattern == "" {
				rule.Pattern = nil
			} else {
				re, err := regexp.Compile(*r.Pattern)
				if err != nil {
					return nil, fmt.Errorf("rule %s: invalid pattern: %w", field, err)
				}
				rule.Pattern = re
			}
		}
		if r.MinLength != nil {
			if *r.MinLength < 0 {
				return nil, fmt.Errorf("rule %s: min_length must be >= 0", field)
			}
			rule.MinLength = *r.MinLength
		}
		if r.Message != nil {
			rule.Message = *r.Message
		}
		if rule.Message == "" {
			rule.Message = "it doesn't look right"
		}
		p.Rules[field] = rule
	}

	if f.ExitWords != nil {
		p.ExitWords = lowerAll(f.ExitWords)
	}
	if f.QuestionStarters != nil {
		p.QuestionStarters = lowerAll(f.QuestionStarters)
	}
	if f.TopicKeywords != nil {
		p.TopicKeywords = lowerAll(f.TopicKeywords)
	}
	if f.MinAnswerWords != nil {
		p.MinAnswerWords = *f.MinAnswerWords
	}
	if f.HistoryLimit != nil {
		p.HistoryLimit = *f.HistoryLimit
	}
	if f.RenderWindow != nil {
		p.RenderWindow = *f.RenderWindow
	}
	if p.MinAnswerWords < 0 || p.HistoryLimit < 1 || p.RenderWindow < 0 {
		return nil, fmt.Errorf("min_answer_words and render_window must be >= 0, history_limit >= 1")
	}
	return p, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
