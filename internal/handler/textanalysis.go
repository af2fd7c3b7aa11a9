package handler

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/allisson/planexec/internal/errors"
)

// TextAnalysisHandler analyzes plain text: counts, summaries, and keyword
// extraction. Stateless.
type TextAnalysisHandler struct{}

// NewTextAnalysisHandler creates the text analysis domain handler.
func NewTextAnalysisHandler() *TextAnalysisHandler {
	return &TextAnalysisHandler{}
}

// Name returns the domain name.
func (t *TextAnalysisHandler) Name() string {
	return "textanalysis"
}

// Methods returns the implemented method names.
func (t *TextAnalysisHandler) Methods() []string {
	return []string{"analyze", "summarize", "extract_keywords"}
}

// Invoke dispatches to the requested method.
func (t *TextAnalysisHandler) Invoke(
	_ context.Context,
	method string,
	params map[string]any,
) (map[string]any, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, err
	}

	switch method {
	case "analyze":
		return t.analyze(text), nil
	case "summarize":
		return t.summarize(text), nil
	case "extract_keywords":
		return t.extractKeywords(text), nil
	default:
		return nil, apperrors.Wrapf(ErrUnknownMethod, "method %q", method)
	}
}

func (t *TextAnalysisHandler) analyze(text string) map[string]any {
	words := strings.Fields(text)
	return map[string]any{
		"summary": t.firstSentence(text),
		"stats": map[string]any{
			"words":      len(words),
			"characters": len(text),
			"lines":      strings.Count(text, "\n") + 1,
		},
	}
}

func (t *TextAnalysisHandler) summarize(text string) map[string]any {
	return map[string]any{"summary": t.firstSentence(text)}
}

func (t *TextAnalysisHandler) extractKeywords(text string) map[string]any {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		if len(word) > 3 {
			counts[word]++
		}
	}

	keywords := make([]string, 0, len(counts))
	for word := range counts {
		keywords = append(keywords, word)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}

	result := make([]any, len(keywords))
	for i, word := range keywords {
		result[i] = word
	}
	return map[string]any{"keywords": result}
}

func (t *TextAnalysisHandler) firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if index := strings.IndexAny(text, ".!?"); index >= 0 {
		return text[:index+1]
	}
	return text
}

// stringParam extracts a required string parameter.
func stringParam(params map[string]any, name string) (string, error) {
	value, exists := params[name]
	if !exists {
		return "", apperrors.Wrapf(ErrDomainExecution, "missing parameter %q", name)
	}
	text, ok := value.(string)
	if !ok {
		return "", apperrors.Wrapf(ErrDomainExecution, "parameter %q must be a string", name)
	}
	return text, nil
}
