package news

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// FeedItem is one parsed RSS entry.
type FeedItem struct {
	Title       string
	Link        string
	PublishedAt time.Time
}

// NewsID returns the md5 hex digest of an article URL.
func NewsID(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parsePubDate reads an RFC 5322 date and falls back to a few layouts seen
// in Korean feeds. Dates without a zone are read in loc.
func parsePubDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := mail.ParseDate(s); err == nil {
		return t, nil
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised pubDate %q", s)
}

// ParseFeed parses an RSS 2.0 document. Items with a missing link or an
// unreadable date are returned in skipped rather than failing the feed.
func ParseFeed(body []byte, loc *time.Location) (items []FeedItem, skipped []error, err error) {
	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse rss: %w", err)
	}
	for _, it := range doc.Channel.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			skipped = append(skipped, fmt.Errorf("item %q has no link", it.Title))
			continue
		}
		published, perr := parsePubDate(it.PubDate, loc)
		if perr != nil {
			skipped = append(skipped, fmt.Errorf("item %s: %w", link, perr))
			continue
		}
		items = append(items, FeedItem{
			Title:       strings.TrimSpace(it.Title),
			Link:        link,
			PublishedAt: published,
		})
	}
	return items, skipped, nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
