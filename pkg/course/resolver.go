package course

import (
	"strings"
	"unicode/utf8"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// SubjectBucket boosts a course whose name contains Key when the query
// mentions any of Terms.
type SubjectBucket struct {
	Key   string
	Terms []string
}

// ScoringConfig holds the resolver tuning values. The defaults have no
// documented derivation; they are kept as-is and can be overridden from config.
type ScoringConfig struct {
	ExactPhraseScore int
	KeywordScore     int
	SubjectScore     int
	MinKeywordLength int // tokens must be strictly longer than this
	HighThreshold    int // score > HighThreshold => high
	MediumThreshold  int // score > MediumThreshold => medium
	Subjects         []SubjectBucket
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ExactPhraseScore: 10,
		KeywordScore:     1,
		SubjectScore:     3,
		MinKeywordLength: 2,
		HighThreshold:    5,
		MediumThreshold:  2,
		Subjects:         DefaultSubjects(),
	}
}

// DefaultSubjects returns the subject buckets in their fixed evaluation order.
func DefaultSubjects() []SubjectBucket {
	return []SubjectBucket{
		{Key: "obligations", Terms: []string{"obligation", "contrat", "responsabilité"}},
		{Key: "pénal", Terms: []string{"pénal", "pénale", "crime", "délit", "procédure pénale"}},
		{Key: "civil", Terms: []string{"civil", "civile", "famille", "personne"}},
		{Key: "administratif", Terms: []string{"administratif", "administrative", "administration"}},
		{Key: "affaires", Terms: []string{"affaires", "commercial", "société", "entreprise"}},
		{Key: "travail", Terms: []string{"travail", "emploi", "salarié", "employeur"}},
		{Key: "fiscal", Terms: []string{"fiscal", "fiscale", "impôt", "taxe", "finances"}},
		{Key: "européen", Terms: []string{"européen", "européenne", "union", "ue"}},
		{Key: "international", Terms: []string{"international", "internationale", "traité"}},
		{Key: "procédure", Terms: []string{"procédure", "procès", "juridictionnel"}},
		{Key: "constitutionnel", Terms: []string{"constitutionnel", "constitution", "public"}},
		{Key: "biens", Terms: []string{"biens", "propriété", "immobilier"}},
	}
}

type ResolveResult struct {
	Course     *Course    `json:"course"`
	Confidence Confidence `json:"confidence"`
	Score      int        `json:"score"`
}

// Resolver scores catalog entries against a free-text question.
type Resolver struct {
	catalog *Catalog
	cfg     ScoringConfig
}

func NewResolver(catalog *Catalog, cfg ScoringConfig) *Resolver {
	return &Resolver{catalog: catalog, cfg: cfg}
}

// Resolve returns the best-scoring course for query. A nil level searches the
// whole catalog. Ties keep the first course in catalog order.
func (r *Resolver) Resolve(query string, level *Level) ResolveResult {
	var candidates []Course
	if level != nil {
		candidates = r.catalog.ByLevel(*level)
	} else {
		candidates = r.catalog.All()
	}

	lowerQuery := strings.ToLower(query)
	keywords := strings.Split(lowerQuery, " ")

	var best *Course
	bestScore := 0
	for i := range candidates {
		score := r.Score(candidates[i].Name, lowerQuery, keywords)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	return ResolveResult{
		Course:     best,
		Confidence: r.confidence(bestScore),
		Score:      bestScore,
	}
}

// Score computes the additive relevance of a course name for an already
// lowercased query and its tokens.
func (r *Resolver) Score(courseName, lowerQuery string, keywords []string) int {
	name := strings.ToLower(courseName)
	score := 0

	// a blank query would otherwise be a substring of every name
	if strings.TrimSpace(lowerQuery) != "" && strings.Contains(name, lowerQuery) {
		score += r.cfg.ExactPhraseScore
	}

	for _, kw := range keywords {
		if utf8.RuneCountInString(kw) > r.cfg.MinKeywordLength && strings.Contains(name, kw) {
			score += r.cfg.KeywordScore
		}
	}

	for _, subject := range r.cfg.Subjects {
		if !strings.Contains(name, subject.Key) {
			continue
		}
		for _, term := range subject.Terms {
			if strings.Contains(lowerQuery, term) {
				score += r.cfg.SubjectScore
			}
		}
	}

	return score
}

func (r *Resolver) confidence(score int) Confidence {
	switch {
	case score > r.cfg.HighThreshold:
		return ConfidenceHigh
	case score > r.cfg.MediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
