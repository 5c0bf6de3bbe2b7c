// Package prompt renders the fixed prompt templates that wrap a conversation
// before it is sent to the model.
package prompt

import (
	"fmt"
	"regexp"

	"github.com/tmc/langchaingo/prompts"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is a named f-string template. Every placeholder it declares defaults
// to the empty string, so rendering never fails on a value the caller omitted.
type Template struct {
	Name string
	Text string

	tmpl prompts.PromptTemplate
}

// Values holds everything a template may reference.
type Values struct {
	History string
	Input   string
	Context string
}

// Map returns the placeholder bindings for v. The RAG template names the
// latest message "question" while the chat template calls it "input".
func (v Values) Map() map[string]any {
	return map[string]any{
		"chat_history": v.History,
		"input":        v.Input,
		"question":     v.Input,
		"context":      v.Context,
	}
}

// New builds a template from text.
func New(name, text string) Template {
	vars := Placeholders(text)
	partials := make(map[string]any, len(vars))
	for _, v := range vars {
		partials[v] = ""
	}

	return Template{
		Name: name,
		Text: text,
		tmpl: prompts.PromptTemplate{
			Template:         text,
			InputVariables:   vars,
			TemplateFormat:   prompts.TemplateFormatFString,
			PartialVariables: partials,
		},
	}
}

// Placeholders lists the distinct {name} tokens in text in order of first use.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes values into the template.
func (t Template) Render(values Values) (string, error) {
	out, err := t.tmpl.Format(values.Map())
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name, err)
	}
	return out, nil
}
