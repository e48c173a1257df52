package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adityjk/news-terminal/internal/news"
)

const DefaultNewsAPIURL = "https://newsapi.org/v2"

// NewsAPI lists articles from newsapi.org.
type NewsAPI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	country string
}

func NewNewsAPI(client *http.Client, baseURL, apiKey, country string) *NewsAPI {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultNewsAPIURL
	}
	if country == "" {
		country = "us"
	}
	return &NewsAPI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		country: country,
	}
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// List fetches top headlines for category.
func (n *NewsAPI) List(ctx context.Context, category news.Category, pageSize int) ([]news.Summary, error) {
	pageSize = ClampPageSize(pageSize)
	params := url.Values{}
	params.Set("category", category.APIName())
	params.Set("country", n.country)
	params.Set("pageSize", strconv.Itoa(pageSize))
	return n.get(ctx, "top-headlines", params, pageSize)
}

// Search queries the everything endpoint, newest first.
func (n *NewsAPI) Search(ctx context.Context, query string, pageSize int) ([]news.Summary, error) {
	pageSize = ClampPageSize(pageSize)
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	return n.get(ctx, "everything", params, pageSize)
}

func (n *NewsAPI) get(ctx context.Context, endpoint string, params url.Values, pageSize int) ([]news.Summary, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("%w: no NewsAPI key configured", news.ErrSourceUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", news.ErrSourceUnavailable, err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, unavailable(endpoint, err)
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && body.Message != "" {
			return nil, unavailable(endpoint, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body.Message))
		}
		return nil, unavailable(endpoint, fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, unavailable(endpoint, fmt.Errorf("decoding response: %w", decodeErr))
	}
	if body.Status != "ok" {
		return nil, unavailable(endpoint, errors.New(body.Code+": "+body.Message))
	}

	summaries := make([]news.Summary, 0, len(body.Articles))
	for _, a := range body.Articles {
		summaries = append(summaries, convertArticle(a))
	}
	return keep(summaries, pageSize), nil
}

func convertArticle(a newsAPIArticle) news.Summary {
	var published time.Time
	if a.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			published = t
		}
	}
	name := a.Source.Name
	if name == "" {
		name = news.Domain(a.URL)
	}
	return news.Summary{
		Title:       strings.TrimSpace(a.Title),
		SourceName:  name,
		URL:         strings.TrimSpace(a.URL),
		PublishedAt: published,
		Description: plainText(a.Description),
		Author:      strings.TrimSpace(a.Author),
	}
}
