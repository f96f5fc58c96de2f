package directive

import (
	"regexp"
	"strings"
)

var inlineCodeSpan = regexp.MustCompile("`[^`\n]*`")

// SuppressMarkdown removes the markdown blocks a renderer would produce from a
// leftover directive: fenced code blocks, paragraphs and inline code spans
// mentioning the marker. It complements Clean, which works on raw text; both
// passes must hide the same content.
func SuppressMarkdown(text string) string {
	if !Contains(text) {
		return text
	}

	var (
		blocks  []string
		current []string
		fence   []string
		inFence bool
	)

	flushParagraph := func() {
		if len(current) == 0 {
			return
		}
		para := strings.Join(current, "\n")
		current = nil
		if Contains(para) {
			return
		}
		blocks = append(blocks, para)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		isFence := strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")

		if inFence {
			fence = append(fence, line)
			if isFence {
				inFence = false
				block := strings.Join(fence, "\n")
				fence = nil
				if !Contains(block) {
					blocks = append(blocks, block)
				}
			}
			continue
		}

		if isFence {
			flushParagraph()
			inFence = true
			fence = []string{line}
			continue
		}

		if trimmed == "" {
			flushParagraph()
			continue
		}
		if stripped := stripMarkerSpans(line); stripped != "" {
			current = append(current, stripped)
		}
	}

	// an unterminated fence renders as a code block up to the end of input
	if inFence {
		block := strings.Join(fence, "\n")
		if !Contains(block) {
			blocks = append(blocks, block)
		}
	}
	flushParagraph()

	return strings.Join(blocks, "\n\n")
}

// stripMarkerSpans drops inline code spans carrying the marker so that a list
// item or heading keeps its visible text.
func stripMarkerSpans(line string) string {
	if !Contains(line) {
		return line
	}
	return strings.TrimRight(inlineCodeSpan.ReplaceAllStringFunc(line, func(span string) string {
		if Contains(span) {
			return ""
		}
		return span
	}), " \t")
}
