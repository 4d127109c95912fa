package rewrite

import "fmt"

// systemPrompt frames every provider call.
const systemPrompt = "You are an editorial rewriter. You rewrite source material " +
	"into fully original articles, keeping every factual claim intact and " +
	"answering only with valid JSON."

// buildPrompt renders the rewrite instruction for one item. The structured
// JSON contract keeps parsing uniform across providers.
func buildPrompt(req Request) string {
	return fmt.Sprintf(`Completely rewrite the following %s content.

Tone: %s
Language style: %s
Editorial focus: %s

Original title:
%s

Original content:
%s

IMPORTANT:
- Keep all factual information
- Use entirely your own words
- Be original and creative

Answer ONLY with valid JSON in exactly this format:
{
  "title": "Rewritten, SEO-friendly title",
  "content": "Full rewritten article",
  "summary": "Summary in 2-3 sentences",
  "keywords": ["word1", "word2", "word3"],
  "meta_description": "SEO meta description (max 160 characters)"
}`,
		req.Category,
		req.Persona.Tone,
		req.Persona.Style,
		req.Persona.Focus,
		req.Title,
		req.Body,
	)
}
