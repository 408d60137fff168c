package learning

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/magpielabs/magpie/pkg/adapter"
	"github.com/magpielabs/magpie/pkg/model"
	"google.golang.org/genai"
)

const (
	// maxInsightsPerTopic bounds how many insights one topic may yield per run.
	maxInsightsPerTopic = 8
	// maxInsightChars bounds the length of a single insight sentence.
	maxInsightChars = 120
	// maxCombinedChars truncates the concatenated page text sent to the model.
	maxCombinedChars = 10000
)

//go:embed prompt/distill.md
var distillPromptRaw string

var distillPromptTmpl = template.Must(template.New("distill").Parse(distillPromptRaw))

// Summarizer distills factual insights about a topic from fetched pages.
// Implementations return at most 8 single-sentence insights; a parse failure
// yields an empty list, not an error.
type Summarizer interface {
	Distill(ctx context.Context, topic string, pages []model.PageContent) ([]string, error)
}

// geminiDistiller implements Summarizer on the Gemini adapter
type geminiDistiller struct {
	gemini adapter.Gemini
}

// NewDistiller creates a Gemini-backed Summarizer
func NewDistiller(gemini adapter.Gemini) Summarizer {
	return &geminiDistiller{gemini: gemini}
}

func (d *geminiDistiller) Distill(ctx context.Context, topic string, pages []model.PageContent) ([]string, error) {
	var buf bytes.Buffer
	if err := distillPromptTmpl.Execute(&buf, map[string]any{
		"Topic":       topic,
		"MaxInsights": maxInsightsPerTopic,
		"MaxChars":    maxInsightChars,
		"Pages":       renderPages(pages),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute distill prompt template")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:        genai.TypeString,
				Description: "One factual insight sentence",
			},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := d.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to distill insights", goerr.V("topic", topic))
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}

	return ParseInsights(resp.Candidates[0].Content.Parts[0].Text), nil
}

// renderPages joins pages as "### title\ncontent" blocks and truncates the
// combined text so one oversized page cannot blow the model's input budget.
func renderPages(pages []model.PageContent) string {
	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		title := p.Title
		if title == "" {
			title = p.URL
		}
		blocks = append(blocks, "### "+title+"\n"+p.Content)
	}

	combined := strings.Join(blocks, "\n\n")
	if len(combined) > maxCombinedChars {
		combined = combined[:maxCombinedChars]
	}
	return combined
}

// ParseInsights extracts an insight list from raw model output. It is a
// best-effort parse: the whole text is tried as a JSON string array first,
// then the first well-formed array substring; anything unparsable yields an
// empty list. Insights are trimmed, empty items dropped, the list capped at 8
// items and each item at 120 characters.
func ParseInsights(text string) []string {
	var items []string
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		items = extractFirstArray(text)
	}

	insights := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if runes := []rune(item); len(runes) > maxInsightChars {
			item = string(runes[:maxInsightChars])
		}
		insights = append(insights, item)
		if len(insights) >= maxInsightsPerTopic {
			break
		}
	}
	return insights
}

// extractFirstArray scans for the first substring that parses as a JSON
// string array. Models occasionally wrap the array in prose or code fences.
func extractFirstArray(text string) []string {
	start := strings.Index(text, "[")
	if start < 0 {
		return nil
	}

	rest := text[start:]
	for end := strings.Index(rest, "]"); end >= 0; {
		var items []string
		if err := json.Unmarshal([]byte(rest[:end+1]), &items); err == nil {
			return items
		}
		next := strings.Index(rest[end+1:], "]")
		if next < 0 {
			return nil
		}
		end += 1 + next
	}
	return nil
}
