// Package symptom projects a free-text presenting complaint and a few vitals
// onto the fixed symptom space shared by patients and specialist profiles.
package symptom

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Dimensions is the length of every symptom vector: four category flags
// followed by severity, urgency, pain and age, each scaled to roughly [0, 1].
const Dimensions = 8

type Category int

const (
	Cardiac Category = iota
	Neurological
	Trauma
	Metabolic
)

func (c Category) String() string {
	switch c {
	case Cardiac:
		return "cardiac"
	case Neurological:
		return "neurological"
	case Trauma:
		return "trauma"
	case Metabolic:
		return "metabolic"
	default:
		return "unknown"
	}
}

var keywords = map[Category][]string{
	Cardiac:      {"heart", "card", "mi", "angina", "myocardial"},
	Neurological: {"stroke", "neuro", "seizure", "paralysis"},
	Trauma:       {"trauma", "fracture", "injury", "bleed", "laceration"},
	Metabolic:    {"diabet", "metabolic", "keto", "hypogly"},
}

// wholeTokenMaxLen is the longest keyword that must match an entire token.
// Short abbreviations like "mi" would otherwise fire inside "migraine".
const wholeTokenMaxLen = 2

// Tokens lowercases and tokenizes a condition description.
func Tokens(condition string) []string {
	if strings.TrimSpace(condition) == "" {
		return nil
	}

	doc, err := prose.NewDocument(condition,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(strings.ToLower(condition))
	}

	var out []string
	for _, tok := range doc.Tokens() {
		t := strings.ToLower(strings.TrimSpace(tok.Text))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the symptom categories detected in condition, in
// category order.
func Categories(condition string) []Category {
	tokens := Tokens(condition)

	var found []Category
	for _, c := range []Category{Cardiac, Neurological, Trauma, Metabolic} {
		if matchesAny(tokens, keywords[c]) {
			found = append(found, c)
		}
	}
	return found
}

func matchesAny(tokens, words []string) bool {
	for _, w := range words {
		for _, t := range tokens {
			if len(w) <= wholeTokenMaxLen {
				if t == w {
					return true
				}
			} else if strings.Contains(t, w) {
				return true
			}
		}
	}
	return false
}

// Project builds the symptom vector
// [cardiac, neuro, trauma, metabolic, severity/100, urgency/100, pain/10, age/100].
func Project(condition string, severity, urgency, pain float64, age int) []float64 {
	v := make([]float64, Dimensions)
	for _, c := range Categories(condition) {
		v[c] = 1
	}
	v[4] = severity / 100
	v[5] = urgency / 100
	v[6] = pain / 10
	v[7] = float64(age) / 100
	return v
}
