package program

import (
	"errors"

	"github.com/karupanerura/prolog-reader/internal/reader"
	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/samber/lo"
)

// SentenceJSON projects a sentence onto values suitable for JSON encoding.
func SentenceJSON(s *reader.Sentence) map[string]any {
	o := map[string]any{
		"term":      types.ToJSONValue(s.Term),
		"canonical": s.Term.String(),
		"line":      s.Line,
	}
	if len(s.Variables) != 0 {
		o["variables"] = lo.Map(s.Variables, func(v reader.VariableName, _ int) map[string]any {
			return map[string]any{"name": v.Name, "var": v.Variable.String()}
		})
	}
	if len(s.Singletons) != 0 {
		o["singletons"] = lo.Map(s.Singletons, func(v reader.VariableName, _ int) string {
			return v.Name
		})
	}
	if len(s.Comments) != 0 {
		o["comments"] = lo.Map(s.Comments, func(c reader.Comment, _ int) map[string]any {
			return map[string]any{"text": c.Text, "line": c.Line}
		})
	}
	return o
}

// ErrorJSON projects an error onto its exception form when it has one.
func ErrorJSON(err error) any {
	var exception types.Exception
	if errors.As(err, &exception) {
		return exception.Exception()
	}
	return map[string]any{"message": err.Error()}
}

func (r *Result) JSON() map[string]any {
	return map[string]any{
		"clauses":    lo.Map(r.Clauses, func(s *reader.Sentence, _ int) map[string]any { return SentenceJSON(s) }),
		"directives": lo.Map(r.Directives, func(s *reader.Sentence, _ int) map[string]any { return SentenceJSON(s) }),
		"errors":     lo.Map(r.Errors, func(err error, _ int) any { return ErrorJSON(err) }),
	}
}
