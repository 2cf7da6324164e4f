package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundmatch/internal/config"
	"github.com/sells-group/fundmatch/internal/fetch"
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/pkg/anthropic"
)

const extractSystemPrompt = `You are a pragmatic M&A analyst. Given the text of a company website, extract a structured company profile.

Instructions:
- Infer fields: company_name, url, industries, locations, employee_count_range, revenue_range_usd, offerings, summary, confidence (0-1).
- Ranges are objects with numeric "min" and "max"; use null for unknown bounds.
- Consider any user-provided context as clarifications or overrides (size, regions, deal preferences).
- Return strictly a JSON object for the company profile, no prose.`

// maxPageChars caps the page text sent to the model to control token spend.
const maxPageChars = 20000

// ClaudeExtractor asks an Anthropic model for the company profile.
type ClaudeExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClaudeExtractor creates a model-backed extractor.
func NewClaudeExtractor(client anthropic.Client, cfg config.AnthropicConfig) *ClaudeExtractor {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &ClaudeExtractor{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (c *ClaudeExtractor) Extract(ctx context.Context, page *fetch.Page, extraContext string) (*model.CompanyProfile, error) {
	var sb strings.Builder
	sb.WriteString("Analyze the following web page content and return only the company profile as JSON.\n")
	fmt.Fprintf(&sb, "URL: %s\n", page.URL)
	if extraContext != "" {
		fmt.Fprintf(&sb, "Context: %s\n", extraContext)
	}
	if page.Title != "" {
		fmt.Fprintf(&sb, "Page title: %s\n", page.Title)
	}
	sb.WriteString("Page text (truncated):\n")
	sb.WriteString(truncate(page.Text, maxPageChars))

	temperature := 0.1
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: extractSystemPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: sb.String()},
		},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: create message")
	}
	resp.Usage.LogCost(c.model, "extract")

	profile, err := parseProfileJSON(resp.Text())
	if err != nil {
		return nil, err
	}
	if profile.URL == "" {
		profile.URL = page.URL
	}

	zap.L().Debug("extracted profile",
		zap.String("company", profile.Name),
		zap.Float64("confidence", profile.Confidence))

	return profile, nil
}

// parseProfileJSON decodes the model output, tolerating prose around the
// JSON object by falling back to the outermost brace pair.
func parseProfileJSON(text string) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	if err := json.Unmarshal([]byte(text), &profile); err == nil {
		return &profile, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("extract: no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &profile); err != nil {
		return nil, eris.Wrap(err, "extract: decode profile")
	}
	return &profile, nil
}
