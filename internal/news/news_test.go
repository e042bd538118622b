package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stock-trader/internal/types"
)

var seoul = time.FixedZone("KST", 9*60*60)

func feedXML(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title>` +
		strings.Join(items, "") + `</channel></rss>`
}

func item(title, link, pubDate string) string {
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>", title, link, pubDate)
}

func TestNewsID(t *testing.T) {
	if got := NewsID("https://example.com/a"); len(got) != 32 {
		t.Errorf("Expected 32 hex chars, got %q", got)
	}
	if NewsID("a") != NewsID("a") || NewsID("a") == NewsID("b") {
		t.Error("Expected stable and distinct ids")
	}
	if NewsID("") != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Unexpected md5 of empty string: %s", NewsID(""))
	}
}

func TestParseFeed(t *testing.T) {
	body := feedXML(
		item("삼성전자 상승", "https://mk.co.kr/1", "Fri, 15 Mar 2024 09:30:00 +0900"),
		item("no link", "", "Fri, 15 Mar 2024 09:30:00 +0900"),
		item("bad date", "https://mk.co.kr/2", "yesterday"),
		item("plain date", "https://mk.co.kr/3", "2024-03-15 10:00:00"),
	)
	items, skipped, err := ParseFeed([]byte(body), seoul)
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if len(skipped) != 2 {
		t.Errorf("Expected 2 skipped items, got %d", len(skipped))
	}
	if items[0].Title != "삼성전자 상승" {
		t.Errorf("Unexpected title %q", items[0].Title)
	}
	want := time.Date(2024, 3, 15, 0, 30, 0, 0, time.UTC)
	if !items[0].PublishedAt.Equal(want) {
		t.Errorf("Expected %v, got %v", want, items[0].PublishedAt)
	}
	if items[1].PublishedAt.Location() != seoul || items[1].PublishedAt.Hour() != 10 {
		t.Errorf("Expected zone-less date read in KST, got %v", items[1].PublishedAt)
	}

	if _, _, err := ParseFeed([]byte("<rss><channel>"), seoul); err == nil {
		t.Error("Expected error for malformed XML")
	}
}

func TestSameDay(t *testing.T) {
	// 23:30 UTC on the 14th is the 15th in Seoul.
	a := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	b := time.Date(2024, 3, 15, 12, 0, 0, 0, seoul)
	if !SameDay(a, b, seoul) {
		t.Error("Expected same day in KST")
	}
	if SameDay(a, b, time.UTC) {
		t.Error("Expected different days in UTC")
	}
}

func TestExtractText(t *testing.T) {
	html := `<div class="body"><p>첫 문단</p><script>var x=1;</script>
		<figure><figcaption>사진</figcaption></figure>
		<p>  둘째 문단  </p></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	sel := doc.Find("div.body")
	if got := ExtractText(sel); got != "첫 문단\n둘째 문단" {
		t.Errorf("Expected scripts and captions removed, got %q", got)
	}
	if sel.Find("script").Length() != 1 {
		t.Error("Expected original selection to be left intact")
	}
}

func TestArticleScraper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><div class="news_cnt_detail_wrap"><p>본문 내용</p></div></body></html>`)
	}))
	defer srv.Close()

	s := NewArticleScraper(5 * time.Second)
	got, err := s.Scrape(context.Background(), srv.URL+"/article", "div.news_cnt_detail_wrap")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if got != "본문 내용" {
		t.Errorf("Expected article body, got %q", got)
	}

	got, err = s.Scrape(context.Background(), srv.URL+"/article", "div.article-body")
	if err != nil || got != "" {
		t.Errorf("Expected empty content for missing selector, got %q, %v", got, err)
	}
}

type fakeScraper struct {
	calls int
	fail  map[string]bool
}

func (f *fakeScraper) Scrape(_ context.Context, url, _ string) (string, error) {
	f.calls++
	if f.fail[url] {
		return "", errors.New("403")
	}
	return "content of " + url, nil
}

func TestRSSCrawlerFetchNews(t *testing.T) {
	now := time.Date(2024, 3, 15, 15, 0, 0, 0, seoul)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			fmt.Fprint(w, feedXML(
				item("today", "https://mk.co.kr/today", "Fri, 15 Mar 2024 08:00:00 +0900"),
				item("blocked", "https://mk.co.kr/blocked", "Fri, 15 Mar 2024 09:00:00 +0900"),
				item("old", "https://mk.co.kr/old", "Thu, 14 Mar 2024 08:00:00 +0900"),
			))
		case "/broken":
			fmt.Fprint(w, "<rss><channel>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewRSSCrawler(SourceConfig{
		Name:  types.MKStock,
		Feeds: []string{srv.URL + "/feed", srv.URL + "/missing", srv.URL + "/broken"},
	}, CrawlerConfig{TodayOnly: true, Timeout: 5 * time.Second, Location: seoul})
	fs := &fakeScraper{fail: map[string]bool{"https://mk.co.kr/blocked": true}}
	c.scraper = fs
	c.now = func() time.Time { return now }

	if c.Source() != types.MKStock {
		t.Errorf("Expected MK_STOCK, got %s", c.Source())
	}
	if c.src.ContentSelector != "div.news_cnt_detail_wrap" {
		t.Errorf("Expected default MK selector, got %s", c.src.ContentSelector)
	}

	news, err := c.FetchNews(context.Background())
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	if len(news) != 2 {
		t.Fatalf("Expected 2 of today's items, got %d", len(news))
	}
	if news[0].ID != NewsID("https://mk.co.kr/today") || news[0].Source != types.MKStock {
		t.Errorf("Unexpected news: %+v", news[0])
	}
	if news[0].Content != "content of https://mk.co.kr/today" {
		t.Errorf("Unexpected content %q", news[0].Content)
	}
	if news[0].SentimentScore != nil {
		t.Errorf("Expected no sentiment without lexicon hits, got %v", *news[0].SentimentScore)
	}
	if news[1].Content != "" {
		t.Errorf("Expected empty content for failed crawl, got %q", news[1].Content)
	}

	// Second run reuses the crawled body; the failed one is retried.
	fs.calls = 0
	if _, err := c.FetchNews(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fs.calls != 1 {
		t.Errorf("Expected only the failed article to be crawled again, got %d calls", fs.calls)
	}
}

func TestSeenCacheExpiry(t *testing.T) {
	now := time.Now()
	cache := newSeenCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.set("id", "body")
	if got, ok := cache.get("id"); !ok || got != "body" {
		t.Fatalf("Expected cached body, got %q, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.get("id"); ok {
		t.Error("Expected cache entry to be expired")
	}
	cache.cleanup()
	if cache.size() != 0 {
		t.Errorf("Expected cleanup to drop expired entries, got %d", cache.size())
	}
}
