package news

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/types"
)

// DefaultContentSelector returns the article body selector for a known
// source.
func DefaultContentSelector(source types.NewsSource) string {
	switch source {
	case types.MKStock:
		return "div.news_cnt_detail_wrap"
	case types.HKFinance:
		return "div.article-body"
	}
	return "article"
}

type SourceConfig struct {
	Name            types.NewsSource
	ContentSelector string
	Feeds           []string
}

type CrawlerConfig struct {
	TodayOnly bool
	Timeout   time.Duration
	Location  *time.Location
	// CacheTTL bounds how long crawled article bodies are reused.
	CacheTTL time.Duration
}

type articleScraper interface {
	Scrape(ctx context.Context, articleURL, selector string) (string, error)
}

// RSSCrawler collects one source's articles from its RSS feeds.
type RSSCrawler struct {
	src     SourceConfig
	cfg     CrawlerConfig
	client  *resty.Client
	scraper articleScraper
	cache   *seenCache
	now     func() time.Time
}

var _ interfaces.NewsCrawler = (*RSSCrawler)(nil)

func NewRSSCrawler(src SourceConfig, cfg CrawlerConfig) *RSSCrawler {
	if src.ContentSelector == "" {
		src.ContentSelector = DefaultContentSelector(src.Name)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", userAgent)

	return &RSSCrawler{
		src:     src,
		cfg:     cfg,
		client:  client,
		scraper: NewArticleScraper(cfg.Timeout),
		cache:   newSeenCache(cfg.CacheTTL),
		now:     time.Now,
	}
}

func (c *RSSCrawler) Source() types.NewsSource {
	return c.src.Name
}

// FetchNews reads every configured feed. A feed that cannot be fetched or
// parsed is logged and skipped, as is any item that cannot be read.
func (c *RSSCrawler) FetchNews(ctx context.Context) ([]types.News, error) {
	c.cache.cleanup()

	var all []types.News
	for _, feed := range c.src.Feeds {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		batch, err := c.fetchFeed(ctx, feed)
		if err != nil {
			logger.ErrorWithErr(ctx, "Error fetching RSS feed", err, "source", string(c.src.Name), "url", feed)
			continue
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (c *RSSCrawler) fetchFeed(ctx context.Context, feed string) ([]types.News, error) {
	resp, err := c.client.R().SetContext(ctx).Get(feed)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		logger.Warn(ctx, "RSS feed returned non-OK status", "url", feed, "status", resp.StatusCode())
		return nil, nil
	}

	items, skipped, err := ParseFeed(resp.Body(), c.cfg.Location)
	if err != nil {
		return nil, err
	}
	for _, serr := range skipped {
		logger.Warn(ctx, "Skipping RSS item", "url", feed, "error", serr)
	}

	today := c.now()
	news := make([]types.News, 0, len(items))
	for _, it := range items {
		if c.cfg.TodayOnly && !SameDay(it.PublishedAt, today, c.cfg.Location) {
			continue
		}
		id := NewsID(it.Link)
		content := c.content(ctx, id, it.Link)
		news = append(news, types.News{
			ID:             id,
			Title:          it.Title,
			Content:        content,
			PublishedAt:    it.PublishedAt,
			Source:         c.src.Name,
			URL:            it.Link,
			SentimentScore: ArticleSentiment(it.Title + "\n" + content),
		})
	}
	return news, nil
}

func (c *RSSCrawler) content(ctx context.Context, id, link string) string {
	if cached, ok := c.cache.get(id); ok {
		return cached
	}
	text, err := c.scraper.Scrape(ctx, link, c.src.ContentSelector)
	if err != nil {
		logger.Warn(ctx, "Failed to crawl article content", "url", link, "error", err)
		return ""
	}
	c.cache.set(id, text)
	return text
}
