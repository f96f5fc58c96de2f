package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no marker untouched",
			in:   "Para 1\n\n\nPara 2",
			want: "Para 1\n\n\nPara 2",
		},
		{
			name: "paragraph with bare marker dropped",
			in:   "Réponse.\n\nCOURSE_SELECTION_DATA:{\"courseId\":\"x\"\n\nFin.",
			want: "Réponse.\n\nFin.",
		},
		{
			name: "fenced block with marker dropped",
			in:   "Réponse.\n\n```json\nCOURSE_SELECTION_DATA:{\"courseId\":\"x\"}\n```\n\nFin.",
			want: "Réponse.\n\nFin.",
		},
		{
			name: "unterminated fence dropped",
			in:   "Réponse.\n\n~~~\nCOURSE_SELECTION_DATA:{\"courseId\":",
			want: "Réponse.",
		},
		{
			name: "other code blocks kept",
			in:   "```go\nx := 1\n```\n\nCOURSE_SELECTION_DATA:{}",
			want: "```go\nx := 1\n```",
		},
		{
			name: "inline span removed from list item",
			in:   "- Droit des biens `COURSE_SELECTION_DATA:{}`\n- Autre",
			want: "- Droit des biens\n- Autre",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuppressMarkdown(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, Contains(got))
		})
	}
}

func TestSuppressMarkdownAgreesWithDecode(t *testing.T) {
	text := "Voici la réponse.\n\n" + Encode(sample())
	res := Decode(text)
	assert.Equal(t, res.CleanedText, SuppressMarkdown(res.CleanedText))
	assert.Equal(t, "Voici la réponse.", SuppressMarkdown(text))
}
