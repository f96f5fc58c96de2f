package tutor

import (
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/directive"
)

// Selection is the course a conversation is currently focused on.
type Selection struct {
	Level    course.Level `json:"level,omitempty"`
	CourseId string       `json:"courseId,omitempty"`
}

// Reconciler keeps the selection in step with directives found in assistant
// text and produces the text that may be shown to the user.
type Reconciler struct {
	selection Selection
}

func NewReconciler(initial Selection) *Reconciler {
	return &Reconciler{selection: initial}
}

func (r *Reconciler) Selection() Selection {
	return r.selection
}

// Render returns text with every trace of the directive removed.
func Render(text string) string {
	return directive.SuppressMarkdown(directive.Decode(text).CleanedText)
}

func (r *Reconciler) Render(text string) string {
	return Render(text)
}

// Apply renders text and, when complete is true, applies its directive to
// the selection. Text read from an unfinished stream never changes state.
// changed reports whether the selection moved.
func (r *Reconciler) Apply(text string, complete bool) (rendered string, changed bool) {
	res := directive.Decode(text)
	rendered = directive.SuppressMarkdown(res.CleanedText)
	if !complete || res.Directive == nil {
		return rendered, false
	}

	next := r.selection
	if res.Directive.Level.Valid() {
		next.Level = res.Directive.Level
	}
	next.CourseId = res.Directive.CourseId

	if next == r.selection {
		return rendered, false
	}
	r.selection = next
	return rendered, true
}
