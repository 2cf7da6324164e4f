package fetch

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fundmatch/internal/config"
)

// Page is the cleaned output of one fetched URL. Text is plaintext with
// boilerplate (scripts, nav, footers) removed, suitable for extraction.
type Page struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}

// Fetcher retrieves and cleans company pages. One limiter covers all
// requests; callers running batches share the global rate.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	ua      string
	maxBody int64
}

// New creates a Fetcher from config with sensible transport defaults.
func New(cfg config.FetchConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 512 * 1024
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (compatible; FundMatchBot/1.0)"
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		ua:      ua,
		maxBody: maxBody,
	}
}

// Fetch retrieves targetURL and returns the cleaned page text.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.ua)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch: status %d for %s", resp.StatusCode, targetURL)
	}

	page := &Page{URL: targetURL, StatusCode: resp.StatusCode}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "html") || looksLikeHTML(body) {
		title, text, err := cleanHTML(body)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: parse html")
		}
		page.Title = title
		page.Text = text
	} else {
		page.Text = collapseWhitespace(string(body))
	}

	zap.L().Debug("fetched page",
		zap.String("url", targetURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("text_len", len(page.Text)))

	return page, nil
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 256 {
		head = head[:256]
	}
	return bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype html"))
}

// cleanHTML strips boilerplate elements and returns the page title and
// plaintext. Prefers <main> or <article> content when present.
func cleanHTML(body []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, nav, footer, header, svg, iframe, form").Remove()

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("article").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	return title, collapseWhitespace(root.Text()), nil
}

var (
	spaceRe = regexp.MustCompile(`[ \t]+`)
	nlRe    = regexp.MustCompile(`\n{3,}`)
)

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(nlRe.ReplaceAllString(s, "\n\n"))
}
