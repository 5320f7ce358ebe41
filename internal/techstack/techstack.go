// Package techstack extracts known technologies from a candidate's free-text
// tech stack description.
package techstack

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Keywords are matched as case-insensitive substrings by Parse, in this order.
var Keywords = []string{
	"python", "java", "javascript", "typescript", "react", "angular",
	"vue", "django", "flask", "spring", "node", "postgresql", "mysql",
	"mongodb", "redis", "docker", "kubernetes", "aws", "azure", "git",
}

var title = cases.Title(language.Und)

// Parse returns the keywords found in text, title-cased ("Javascript",
// "Postgresql"), without duplicates and in keyword-list order.
func Parse(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var found []string
	for _, kw := range Keywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		name := title.String(kw)
		if seen[name] {
			continue
		}
		seen[name] = true
		found = append(found, name)
	}
	return found
}

// Categories groups the items of a tech stack description.
type Categories struct {
	Languages  []string `json:"languages,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	Databases  []string `json:"databases,omitempty"`
	Tools      []string `json:"tools,omitempty"`
	Other      []string `json:"other,omitempty"`
}

// IsEmpty reports whether no item was categorized.
func (c Categories) IsEmpty() bool {
	return len(c.Languages)+len(c.Frameworks)+len(c.Databases)+len(c.Tools)+len(c.Other) == 0
}

// Groups returns the non-empty categories as label/items pairs in display order.
func (c Categories) Groups() []Group {
	all := []Group{
		{"Languages", c.Languages},
		{"Frameworks", c.Frameworks},
		{"Databases", c.Databases},
		{"Tools", c.Tools},
		{"Other", c.Other},
	}
	var out []Group
	for _, g := range all {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Group is one labelled category.
type Group struct {
	Label string
	Items []string
}

var (
	languageWords  = []string{"python", "java", "javascript", "typescript", "c++", "go", "rust"}
	frameworkWords = []string{"django", "react", "angular", "vue", "flask", "spring", "express"}
	databaseWords  = []string{"postgresql", "mysql", "mongodb", "redis", "cassandra"}
	toolWords      = []string{"docker", "kubernetes", "aws", "git", "jenkins", "terraform"}
)

// Categorize splits text on commas and newlines and files each item under
// the first category with a matching keyword. Keywords match whole words only,
// so "Django" is not a language and "MongoDB" is not Go.
func Categorize(text string) Categories {
	var c Categories
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' }) {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		lower := strings.ToLower(item)
		switch {
		case matchesAny(lower, languageWords):
			c.Languages = append(c.Languages, item)
		case matchesAny(lower, frameworkWords):
			c.Frameworks = append(c.Frameworks, item)
		case matchesAny(lower, databaseWords):
			c.Databases = append(c.Databases, item)
		case matchesAny(lower, toolWords):
			c.Tools = append(c.Tools, item)
		default:
			c.Other = append(c.Other, item)
		}
	}
	return c
}

func matchesAny(s string, words []string) bool {
	for _, w := range words {
		if containsWord(s, w) {
			return true
		}
	}
	return false
}

// containsWord reports whether w occurs in s with no letter or digit
// directly before or after it.
func containsWord(s, w string) bool {
	for from := 0; from <= len(s)-len(w); {
		i := strings.Index(s[from:], w)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(w)
		if !isWordByteBefore(s, start) && !isWordByteAt(s, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordByteBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r := rune(s[i-1])
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isWordByteAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r := rune(s[i])
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
