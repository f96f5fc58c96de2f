package tutor

import (
	"strings"
)

// DefaultForbiddenPhrases are outline markers a tutor answer must not contain.
var DefaultForbiddenPhrases = []string{
	"plan de dissertation",
	"plan détaillé",
	"titres de plan",
	"structure complète",
	"I. II. III.",
	"A. B. C.",
	"1. 2. 3.",
}

// PhraseFilter detects forbidden phrases, case-insensitively.
type PhraseFilter struct {
	phrases []string
	lower   []string
}

func NewPhraseFilter(phrases []string) *PhraseFilter {
	f := &PhraseFilter{}
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f.phrases = append(f.phrases, p)
		f.lower = append(f.lower, strings.ToLower(p))
	}
	return f
}

func (f *PhraseFilter) Phrases() []string {
	out := make([]string, len(f.phrases))
	copy(out, f.phrases)
	return out
}

func (f *PhraseFilter) Contains(text string) bool {
	return len(f.Matches(text)) > 0
}

// Matches returns every configured phrase found in text.
func (f *PhraseFilter) Matches(text string) []string {
	lowerText := strings.ToLower(text)
	var hits []string
	for i, p := range f.lower {
		if strings.Contains(lowerText, p) {
			hits = append(hits, f.phrases[i])
		}
	}
	return hits
}
