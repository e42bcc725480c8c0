package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// maxPageChars bounds the text returned to the model.
const maxPageChars = 10000

// WebPage fetches a URL and returns the visible text of the page.
type WebPage struct {
	client   *http.Client
	maxChars int
}

var _ Tool = (*WebPage)(nil)

// NewWebPage uses http.DefaultClient when client is nil.
func NewWebPage(client *http.Client) *WebPage {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebPage{client: client, maxChars: maxPageChars}
}

func (w *WebPage) Name() string { return "fetch_web_page" }

func (w *WebPage) Description() string {
	return "Fetches a web page and returns its readable text. Input is the page URL."
}

func (w *WebPage) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"url": map[string]any{
			"type":        "string",
			"description": "absolute http(s) URL",
		},
	}, "url")
}

func (w *WebPage) Call(ctx context.Context, arguments string) (string, error) {
	target := arguments
	if gjson.Valid(arguments) {
		target = gjson.Get(arguments, "url").String()
	}
	return w.Fetch(ctx, target)
}

// Fetch downloads target and strips scripts, styles and markup.
func (w *WebPage) Fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if text == "" {
		return "", fmt.Errorf("no text content found")
	}
	if len(text) > w.maxChars {
		text = text[:w.maxChars]
	}
	return text, nil
}
