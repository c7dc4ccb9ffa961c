package adjudicate

import (
	"fmt"
	"strings"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/retrieval"
)

const promptText = `You are an expert medical coding analyst.

You are given:
Internal service details:
{question}

And these possible standard SBS codes:
{context}

Your task:
1. Carefully compare the internal service's description, category, and classification with each SBS option's short and long descriptions, definition, category (Block Name), and classification (Chapter Name).
2. Identify the single best-matching SBS code that most accurately represents the internal service.
3. Provide the SBS short description for the selected code.
4. Write a clear, one-sentence explanation of why this SBS code is the best match, mentioning key matching aspects.

If you are unsure, pick the SBS code that has the closest clinical purpose or wording.

Before deciding, compare each SBS option using a 3-point checklist:
- Clinical Purpose Match
- Terminology Similarity
- Classification (Block/Chapter) Match

Then choose the closest based on most alignment.

Respond in this exact format ONLY:
Best SBS Code: <code>
Best SBS Description: <short description>
Explanation: <one-sentence reason>`

// BuildQuery renders the internal record as the retrieval and prompt query.
func BuildQuery(r record.InternalRecord) string {
	return fmt.Sprintf("Service Code: %s\nDescription: %s\nClassification: %s\nCategory: %s",
		r.ServiceCode, r.Description, r.Classification, r.Category)
}

// BuildPrompt fills the fixed template with the query and the retrieved
// candidate documents.
func BuildPrompt(query string, candidates []retrieval.Scored) string {
	contents := make([]string, len(candidates))
	for i, c := range candidates {
		contents[i] = c.Document.Content
	}
	context := strings.Join(contents, "\n\n")

	p := strings.ReplaceAll(promptText, "{question}", query)
	return strings.ReplaceAll(p, "{context}", context)
}
