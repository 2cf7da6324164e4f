package extract

import (
	"context"
	"strings"

	"github.com/sells-group/fundmatch/internal/fetch"
	"github.com/sells-group/fundmatch/internal/model"
	"github.com/sells-group/fundmatch/internal/normalize"
)

// heuristicConfidence is the fixed confidence assigned to keyword-derived
// profiles. Low enough to signal the result is a rough sketch.
const heuristicConfidence = 0.45

// industryKeywords maps an industry label to the page keywords that imply
// it. Ordered so repeated extractions list industries identically.
var industryKeywords = []struct {
	label    string
	keywords []string
}{
	{"software", []string{"saas", "software", "platform", "cloud"}},
	{"tech-enabled services", []string{"managed service", "it services", "digital"}},
	{"industrial", []string{"manufacturing", "industrial", "plant", "fabrication"}},
	{"healthcare", []string{"clinic", "patient", "medical", "healthcare"}},
	{"consumer", []string{"ecommerce", "retail", "brand", "store", "shop"}},
	{"business services", []string{"b2b", "consulting", "outsourcing", "agency"}},
}

var locationTokens = []string{"United States", "USA", "US", "Canada", "United Kingdom", "Europe"}

var offeringKeywords = []string{"products", "services", "solutions", "platform"}

// HeuristicExtractor builds a profile with keyword rules only. It needs no
// API key, so demos and tests run without network credentials the same way
// every time.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates a keyword-based extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

func (h *HeuristicExtractor) Extract(_ context.Context, page *fetch.Page, _ string) (*model.CompanyProfile, error) {
	title := strings.TrimSpace(page.Title)
	text := strings.TrimSpace(page.Text)
	lower := strings.ToLower(text)

	name := nameFromTitle(title)
	if name == "" {
		name = hostFromURL(page.URL)
	}

	var industries []string
	for _, entry := range industryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				industries = append(industries, normalize.Title(entry.label))
				break
			}
		}
	}
	if len(industries) == 0 {
		industries = []string{"Business Services"}
	}

	var locations []string
	for _, token := range locationTokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			locations = append(locations, token)
		}
	}
	locations = dedupe(locations)
	if len(locations) == 0 {
		locations = []string{"United States"}
	}

	var offerings []string
	for _, kw := range offeringKeywords {
		if s := firstSentenceWith(lower, kw); s != "" {
			offerings = append(offerings, truncate(s, 140))
		}
	}

	summary := title
	if summary == "" && len(offerings) > 0 {
		summary = offerings[0]
	}

	return &model.CompanyProfile{
		Name:          name,
		URL:           page.URL,
		Industries:    industries,
		Locations:     locations,
		EmployeeCount: &model.Range{Min: model.Float(10), Max: model.Float(500)},
		RevenueUSD:    &model.Range{Min: model.Float(5_000_000), Max: model.Float(80_000_000)},
		Offerings:     offerings,
		Summary:       truncate(summary, 280),
		Confidence:    heuristicConfidence,
	}, nil
}

// nameFromTitle takes the segment before the first separator in a page
// title, e.g. "Acme Machining | Precision CNC" yields "Acme Machining".
func nameFromTitle(title string) string {
	name := title
	for _, sep := range []string{"|", "–", "-", "::", ":"} {
		if strings.Contains(name, sep) {
			name = strings.TrimSpace(strings.SplitN(name, sep, 2)[0])
			break
		}
	}
	return name
}

func hostFromURL(rawURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	return host
}

// firstSentenceWith returns the sentence around the first occurrence of kw,
// capitalized. Sentence bounds are naive period scans.
func firstSentenceWith(textLower, kw string) string {
	i := strings.Index(textLower, kw)
	if i < 0 {
		return ""
	}
	start := strings.LastIndex(textLower[:i], ".") + 1
	end := strings.Index(textLower[i:], ".")
	if end < 0 {
		end = min(len(textLower), i+240)
	} else {
		end += i
	}
	s := strings.TrimSpace(textLower[start:end])
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
