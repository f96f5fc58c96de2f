package course

import (
	"fmt"
	"strings"
)

const (
	SourceFullText  = "JurisPerform Course PDF"
	SourceSummaries = "JurisPerform Course PDF Summaries"

	envelopeFooter = "--- FIN DU CONTENU DU COURS ---"
)

// Summary is one ingested per-document summary row.
type Summary struct {
	FileName string `json:"file_name"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Level    Level  `json:"level"`
}

func envelopeHeader(c Course) string {
	return fmt.Sprintf("[CONTENU DU COURS %s - %s]", c.Id, c.Name)
}

// FullTextEnvelope wraps a full course text with the closed-book header and footer.
func FullTextEnvelope(c Course, content string) string {
	return fmt.Sprintf(`%s

%s

%s

IMPORTANT: Ce contenu provient exclusivement du PDF du cours %s de JurisPerform. Seules les informations présentes ci-dessus doivent être utilisées pour répondre. Si l'information recherchée n'est pas dans ce contenu, indiquez-le clairement à l'étudiant.`,
		envelopeHeader(c), content, envelopeFooter, c.Id)
}

// SummaryEnvelope wraps compiled summaries. fallback marks a level-wide keyword match.
func SummaryEnvelope(c Course, compiled string, documents int, fallback bool) string {
	var note string
	if fallback {
		note = fmt.Sprintf("IMPORTANT: Ce contenu provient des résumés des PDFs liés au cours %s (%s), retrouvés par recherche élargie sur le niveau (correspondance de repli par mots-clés). Ces résumés ont été extraits de %d document(s). Seules les informations présentes ci-dessus doivent être utilisées pour répondre.",
			c.Name, c.Level, documents)
	} else {
		note = fmt.Sprintf("IMPORTANT: Ce contenu provient des résumés des PDFs du cours %s (%s). Ces résumés ont été extraits de %d document(s). Seules les informations présentes ci-dessus doivent être utilisées pour répondre.",
			c.Name, c.Level, documents)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s", envelopeHeader(c), compiled, envelopeFooter, note)
}

// CompileSummaries renders summaries as labeled blocks joined by separators.
func CompileSummaries(summaries []Summary) string {
	blocks := make([]string, len(summaries))
	for i, s := range summaries {
		blocks[i] = fmt.Sprintf("[Document %d: %s]\nCatégorie: %s\n\n%s\n", i+1, s.FileName, s.Category, s.Summary)
	}
	return strings.Join(blocks, "\n---\n\n")
}
