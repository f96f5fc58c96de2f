package directive

import (
	"strings"
	"testing"

	"jurisperform-be/pkg/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Directive {
	return Directive{
		CourseId:   "l1-droit-public",
		CourseName: "Introduction au droit public",
		Level:      course.LevelL1,
		Confidence: course.ConfidenceHigh,
		Reason:     "x",
	}
}

func TestDecodeFencedAnswer(t *testing.T) {
	text := "Voici la réponse.\n\n`COURSE_SELECTION_DATA:{\"courseId\":\"l1-droit-public\",\"courseName\":\"Introduction au droit public\",\"level\":\"L1\",\"confidence\":\"high\",\"reason\":\"x\"}`"

	res := Decode(text)
	require.NotNil(t, res.Directive)
	assert.Equal(t, sample(), *res.Directive)
	assert.Equal(t, "Voici la réponse.", res.CleanedText)
}

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantCourse  string
		wantCleaned string
	}{
		{
			name:        "bare single line",
			text:        "Réponse.\nCOURSE_SELECTION_DATA:{\"courseId\":\"l3-droit-biens\",\"courseName\":\"Droit des biens\",\"level\":\"L3\",\"confidence\":\"medium\",\"reason\":\"r\"}\n",
			wantCourse:  "l3-droit-biens",
			wantCleaned: "Réponse.",
		},
		{
			name: "fenced multi line",
			text: "Réponse.\n\n`COURSE_SELECTION_DATA:{\n  \"courseId\": \"l2-droit-penal\",\n  \"courseName\": \"Droit pénal et procédure pénale\",\n  \"level\": \"L2\",\n  \"confidence\": \"low\",\n  \"reason\": \"r\"\n}`\n",
			wantCourse:  "l2-droit-penal",
			wantCleaned: "Réponse.",
		},
		{
			name:        "spaces after colons",
			text:        "A\n\n`COURSE_SELECTION_DATA:{\"courseId\": \"l2-droit-obligations\", \"courseName\": \"Droit des obligations\", \"level\": \"L2\", \"confidence\": \"high\", \"reason\": \"Explication\"}`",
			wantCourse:  "l2-droit-obligations",
			wantCleaned: "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decode(tt.text)
			require.NotNil(t, res.Directive)
			assert.Equal(t, tt.wantCourse, res.Directive.CourseId)
			assert.Equal(t, tt.wantCleaned, res.CleanedText)
		})
	}
}

func TestDecodeMalformedIsAbsence(t *testing.T) {
	text := "Texte.\n`COURSE_SELECTION_DATA:{courseId: l1}`"
	res := Decode(text)
	assert.Nil(t, res.Directive)
	assert.Equal(t, "Texte.", res.CleanedText)
	assert.False(t, Contains(res.CleanedText))
}

func TestDecodeSkipsMalformedAndUsesNextMatch(t *testing.T) {
	good := EncodeBare(sample())
	text := "`COURSE_SELECTION_DATA:{oops}`\n\nCorps.\n\n" + good + "\n"

	res := Decode(text)
	require.NotNil(t, res.Directive)
	assert.Equal(t, "l1-droit-public", res.Directive.CourseId)
	assert.Equal(t, "Corps.", res.CleanedText)
}

// A bare directive runs to the last closing brace of its line, so prose
// with a brace after it swallows the directive and is dropped with it.
func TestDecodeBareLineWithTrailingBrace(t *testing.T) {
	bare := EncodeBare(sample())
	tests := []struct {
		name        string
		text        string
		wantCourse  string
		wantCleaned string
	}{
		{"brace later on the line", "avant " + bare + " après } fin", "", "avant  fin"},
		{"brace on the next line", "avant " + bare + "\naprès } fin", "l1-droit-public", "avant \naprès } fin"},
		{"fenced keeps trailing prose", "avant `" + bare + "` après } fin", "l1-droit-public", "avant  après } fin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decode(tt.text)
			if tt.wantCourse == "" {
				assert.Nil(t, res.Directive)
			} else {
				require.NotNil(t, res.Directive)
				assert.Equal(t, tt.wantCourse, res.Directive.CourseId)
			}
			assert.Equal(t, tt.wantCleaned, res.CleanedText)
			assert.False(t, Contains(res.CleanedText))
		})
	}
}

func TestDecodeWithoutDirective(t *testing.T) {
	texts := []string{
		"",
		"  Une réponse simple.  \n",
		"## Titre\n\n- point `code` ici\n\n```go\nfmt.Println(\"{}\")\n```",
	}
	for _, text := range texts {
		res := Decode(text)
		assert.Nil(t, res.Directive)
		assert.Equal(t, strings.TrimSpace(text), res.CleanedText)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	directives := []Directive{
		sample(),
		{CourseId: "crfpa-tglf", CourseName: "TGLF (Oral)", Level: course.LevelCRFPA, Confidence: course.ConfidenceLow, Reason: "backtick ` and brace } inside"},
		{CourseId: "l2-droit-fiscal", CourseName: "Droit fiscal", Level: course.LevelL2, Confidence: course.ConfidenceMedium, Reason: "line\nbreak & <html>"},
	}
	surroundings := [][2]string{
		{"", ""},
		{"Intro.\n\n", ""},
		{"Intro `code` inline ", " suite } du texte."},
		{"## Titre\n\n", "\n\nConclusion {avec accolades}."},
	}

	for _, d := range directives {
		for _, s := range surroundings {
			for _, encoded := range []string{Encode(d), EncodeBare(d) + "\n"} {
				text := s[0] + encoded + s[1]
				res := Decode(text)
				require.NotNil(t, res.Directive, text)
				assert.Equal(t, d, *res.Directive, text)
				assert.NotContains(t, res.CleanedText, Marker, text)
			}
		}
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Voici.\n\n" + Encode(sample()),
		"Avant " + EncodeBare(sample()) + "\napres",
		"`COURSE_SELECTION_DATA:{broken`",
		"pas de directive",
	}
	for _, in := range inputs {
		first := Decode(in)
		second := Decode(first.CleanedText)
		assert.Nil(t, second.Directive, in)
		assert.Equal(t, first.CleanedText, second.CleanedText, in)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sample().Validate())

	d := sample()
	d.Level = "M2"
	assert.Error(t, d.Validate())

	d = sample()
	d.Confidence = "certain"
	assert.Error(t, d.Validate())

	d = sample()
	d.CourseId = " "
	assert.Error(t, d.Validate())
}
