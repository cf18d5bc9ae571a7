package news

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

const DefaultNewsDataURL = "https://newsdata.io"

// NewsData implements ports.NewsSource over the NewsData.io latest-news API.
type NewsData struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewNewsData creates a NewsData.io source. The key is required by the provider.
func NewNewsData(baseURL, apiKey string, timeout time.Duration) *NewsData {
	if baseURL == "" {
		baseURL = DefaultNewsDataURL
	}
	return &NewsData{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    newHTTPClient(timeout),
	}
}

func (n *NewsData) Name() string { return "newsdata" }

type newsDataResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		Link        string `json:"link"`
		PubDate     string `json:"pubDate"`
		SourceID    string `json:"source_id"`
		ImageURL    string `json:"image_url"`
	} `json:"results"`
}

func (n *NewsData) Search(ctx context.Context, query string) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("apikey", n.apiKey)
	q.Set("q", query)
	q.Set("language", "en")
	q.Set("category", "environment,business")

	var body newsDataResponse
	if err := getJSON(ctx, n.http, "newsdata.search", query, n.baseURL+"/api/1/news?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	out := make([]domain.Article, 0, len(body.Results))
	for _, r := range body.Results {
		desc := r.Description
		if desc == "" {
			desc = r.Content
		}
		out = append(out, domain.Article{
			Title:       r.Title,
			Description: desc,
			URL:         r.Link,
			PublishedAt: parseTime(r.PubDate),
			Source:      r.SourceID,
			ImageURL:    r.ImageURL,
		})
	}
	return out, nil
}
