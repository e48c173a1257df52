package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/news"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

const DefaultRSSURL = "https://news.google.com/rss"

var rssTopics = map[news.Category]string{
	news.Business:   "BUSINESS",
	news.Technology: "TECHNOLOGY",
	news.Sports:     "SPORTS",
	news.Health:     "HEALTH",
}

// RSS lists articles from Google News topic feeds. It needs no API key.
type RSS struct {
	client  *http.Client
	parser  *gofeed.Parser
	baseURL string
	country string
}

func NewRSS(client *http.Client, baseURL, country string) *RSS {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultRSSURL
	}
	if country == "" {
		country = "us"
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	parser.RSSTranslator = &sourceTranslator{}
	return &RSS{client: client, parser: parser, baseURL: strings.TrimRight(baseURL, "/"), country: country}
}

func (r *RSS) locale() url.Values {
	cc := strings.ToUpper(r.country)
	v := url.Values{}
	v.Set("hl", "en-"+cc)
	v.Set("gl", cc)
	v.Set("ceid", cc+":en")
	return v
}

// List fetches the topic feed for category.
func (r *RSS) List(ctx context.Context, category news.Category, pageSize int) ([]news.Summary, error) {
	feedURL := r.baseURL
	if topic, ok := rssTopics[category]; ok {
		feedURL += "/headlines/section/topic/" + topic
	}
	return r.fetch(ctx, feedURL+"?"+r.locale().Encode(), ClampPageSize(pageSize))
}

// Search fetches the search feed for query.
func (r *RSS) Search(ctx context.Context, query string, pageSize int) ([]news.Summary, error) {
	params := r.locale()
	params.Set("q", query)
	return r.fetch(ctx, r.baseURL+"/search?"+params.Encode(), ClampPageSize(pageSize))
}

func (r *RSS) fetch(ctx context.Context, feedURL string, pageSize int) ([]news.Summary, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, unavailable("rss", fmt.Errorf("fetching %s: %w", feedURL, err))
	}

	summaries := make([]news.Summary, 0, len(feed.Items))
	for _, item := range feed.Items {
		summaries = append(summaries, convertFeedItem(item))
	}
	return keep(summaries, pageSize), nil
}

func convertFeedItem(item *gofeed.Item) news.Summary {
	var pub time.Time
	if item.PublishedParsed != nil {
		pub = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		pub = *item.UpdatedParsed
	}

	title, sourceName := splitTitleSource(strings.TrimSpace(item.Title))
	if name := item.Custom[customSourceName]; name != "" {
		sourceName = name
	}
	if sourceName == "" {
		sourceName = news.Domain(item.Link)
	}

	author := ""
	if item.Author != nil {
		author = item.Author.Name
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}

	return news.Summary{
		Title:       title,
		SourceName:  sourceName,
		URL:         strings.TrimSpace(item.Link),
		PublishedAt: pub,
		Description: plainText(desc),
		Author:      author,
		SourceURL:   item.Custom[customSourceURL],
	}
}

const (
	customSourceURL  = "source_url"
	customSourceName = "source_name"
)

// sourceTranslator keeps each item's <source> element, which the universal
// feed drops. Google News links are redirect wrappers and <source> is the
// only place the publisher appears.
type sourceTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	raw, ok := feed.(*rss.Feed)
	if !ok || len(raw.Items) != len(out.Items) {
		return out, nil
	}
	for i, item := range raw.Items {
		if item.Source == nil {
			continue
		}
		if out.Items[i].Custom == nil {
			out.Items[i].Custom = map[string]string{}
		}
		if u := strings.TrimSpace(item.Source.URL); news.ValidURL(u) {
			out.Items[i].Custom[customSourceURL] = u
		}
		if name := strings.TrimSpace(item.Source.Title); name != "" {
			out.Items[i].Custom[customSourceName] = name
		}
	}
	return out, nil
}

// splitTitleSource separates Google News' "Headline - Publisher" titles.
func splitTitleSource(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 || idx+3 >= len(title) {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
