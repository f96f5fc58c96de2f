// Package directive reads and writes the course-selection line the tutor
// model appends to its answers:
//
//	`COURSE_SELECTION_DATA:{"courseId":"...","courseName":"...","level":"L2","confidence":"high","reason":"..."}`
//
// The line travels inside free text, so decoding is a tolerant best effort
// over three textual shapes rather than a strict parser.
package directive

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"jurisperform-be/pkg/course"

	"go.uber.org/zap"
)

const Marker = "COURSE_SELECTION_DATA:"

type Directive struct {
	CourseId   string            `json:"courseId"`
	CourseName string            `json:"courseName"`
	Level      course.Level      `json:"level"`
	Confidence course.Confidence `json:"confidence"`
	Reason     string            `json:"reason"`
}

func (d Directive) Validate() error {
	if strings.TrimSpace(d.CourseId) == "" {
		return errors.New("directive: empty courseId")
	}
	if !d.Level.Valid() {
		return fmt.Errorf("directive: unknown level %q", d.Level)
	}
	if !d.Confidence.Valid() {
		return fmt.Errorf("directive: unknown confidence %q", d.Confidence)
	}
	return nil
}

type Result struct {
	Directive   *Directive
	CleanedText string
}

// Extraction patterns, in priority order: back-tick fenced single line,
// bare line, back-tick fenced spanning lines.
var (
	extractPatterns = []*regexp.Regexp{
		regexp.MustCompile("`COURSE_SELECTION_DATA:(\\{[^`]+\\})`"),
		regexp.MustCompile(`COURSE_SELECTION_DATA:(\{[^\n]+\})`),
		regexp.MustCompile("`COURSE_SELECTION_DATA:(\\{[\\s\\S]*?\\})`"),
	}
	removePatterns = []*regexp.Regexp{
		regexp.MustCompile("`COURSE_SELECTION_DATA:\\{[^`]+\\}`"),
		regexp.MustCompile(`COURSE_SELECTION_DATA:\{[^\n]+\}`),
		regexp.MustCompile("`COURSE_SELECTION_DATA:\\{[\\s\\S]*?\\}`"),
	}
)

type Codec struct {
	log *zap.Logger
}

func NewCodec(log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{log: log}
}

var defaultCodec = NewCodec(nil)

// Encode renders d as a back-tick fenced single line.
func Encode(d Directive) string {
	return "`" + EncodeBare(d) + "`"
}

// EncodeBare renders d without the back-tick fence.
func EncodeBare(d Directive) string {
	b, _ := json.Marshal(d)
	// back-ticks can only occur inside JSON strings; escaping them keeps the
	// fenced patterns unambiguous
	return Marker + strings.ReplaceAll(string(b), "`", "\\u0060")
}

func Decode(text string) Result {
	return defaultCodec.Decode(text)
}

func Clean(text string) string {
	return defaultCodec.Clean(text)
}

// Contains reports whether text carries the directive marker at all.
func Contains(text string) bool {
	return strings.Contains(text, Marker)
}

// Decode extracts the first parseable directive and returns text with every
// directive-shaped substring removed.
func (c *Codec) Decode(text string) Result {
	return Result{
		Directive:   c.extract(text),
		CleanedText: c.Clean(text),
	}
}

func (c *Codec) extract(text string) *Directive {
	if !Contains(text) {
		return nil
	}
	for i, pattern := range extractPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			var d Directive
			if err := json.Unmarshal([]byte(m[1]), &d); err != nil {
				c.log.Warn("malformed course selection data",
					zap.Int("pattern", i),
					zap.String("raw", m[1]),
					zap.Error(err),
				)
				continue
			}
			if strings.TrimSpace(d.CourseId) == "" {
				c.log.Warn("course selection data without courseId", zap.Int("pattern", i), zap.String("raw", m[1]))
				continue
			}
			return &d
		}
	}
	return nil
}

// Clean removes all directive-shaped substrings and trims surrounding space.
// Removal repeats until stable so the result never decodes to a directive.
func (c *Codec) Clean(text string) string {
	cleaned := text
	for Contains(cleaned) {
		before := cleaned
		for _, pattern := range removePatterns {
			cleaned = pattern.ReplaceAllLiteralString(cleaned, "")
		}
		if cleaned == before {
			break
		}
	}
	return strings.TrimSpace(cleaned)
}
