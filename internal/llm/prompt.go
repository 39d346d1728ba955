package llm

import (
	"fmt"
	"strings"

	"github.com/tyler-sommer/stick"
)

const systemTemplate = `You are an industrial product datasheet parser. The document describes one or more products of type "{{ record_type }}".
Extract EVERY distinct product variant you can identify. A table of ordering codes usually means one product per row.
Return ONLY a JSON array of objects, one object per product, each matching the provided JSON Schema. No prose, no markdown fences.
Rules:
- Use the exact property names from the schema. Omit a property entirely when the document does not state it; never output null.
- Physical quantities are objects: {"value": <number>, "unit": "<unit>"} for single values, {"min": <number>, "max": <number>, "unit": "<unit>"} for ranges.
- Keep units exactly as printed (e.g. "Nm", "rpm", "VAC").
- part_number is the manufacturer ordering code, not a marketing name.
- Do not invent values. If uncertain, omit the field.`

const userTemplate = `JSON Schema:
{{ schema }}

Source: {{ source_url }}{% if page_note %}
{{ page_note }}{% endif %}{% if document %}

Document text:
{{ document }}{% endif %}`

// PromptBuilder renders the extraction prompts. Templates are Twig
// syntax rendered through stick.
type PromptBuilder struct {
	env *stick.Env
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{env: stick.New(nil)}
}

// System renders the system instruction for one record type.
func (p *PromptBuilder) System(recordType string) (string, error) {
	return p.render(systemTemplate, map[string]stick.Value{
		"record_type": recordType,
	})
}

// User renders the user message: schema, source and, for text
// documents, the document body. Binary documents travel as a separate
// part, so document stays empty for those.
func (p *PromptBuilder) User(req ExtractRequest) (string, error) {
	var pageNote string
	if len(req.Pages) > 0 {
		nums := make([]string, len(req.Pages))
		for i, page := range req.Pages {
			nums[i] = fmt.Sprintf("%d", page+1)
		}
		pageNote = "Only extract from pages " + strings.Join(nums, ", ") + " of the document."
	}
	return p.render(userTemplate, map[string]stick.Value{
		"schema":     string(req.SchemaJSON),
		"source_url": req.SourceURL,
		"page_note":  pageNote,
		"document":   req.Text,
	})
}

func (p *PromptBuilder) render(tpl string, ctx map[string]stick.Value) (string, error) {
	var out strings.Builder
	if err := p.env.Execute(tpl, &out, ctx); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out.String(), nil
}
