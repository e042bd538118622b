package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ArticleScraper fetches article pages and extracts the body text found
// under a CSS selector.
type ArticleScraper struct {
	timeout time.Duration
}

func NewArticleScraper(timeout time.Duration) *ArticleScraper {
	return &ArticleScraper{timeout: timeout}
}

// Scrape returns the text of the first element matching selector. An empty
// string with a nil error means the page had no such element.
func (s *ArticleScraper) Scrape(ctx context.Context, articleURL, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	})

	var content string
	c.OnHTML(selector, func(e *colly.HTMLElement) {
		if content != "" {
			return
		}
		content = ExtractText(e.DOM)
	})

	if err := c.Visit(articleURL); err != nil {
		return "", fmt.Errorf("failed to visit %s: %w", articleURL, err)
	}
	c.Wait()
	return content, nil
}

// ExtractText returns the readable text of sel with scripts, styles and
// captions removed, one trimmed non-empty line per text line.
func ExtractText(sel *goquery.Selection) string {
	body := sel.Clone()
	body.Find("script, style, noscript, iframe, figure, figcaption").Remove()

	lines := strings.Split(body.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
