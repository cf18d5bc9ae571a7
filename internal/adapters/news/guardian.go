package news

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

const (
	DefaultGuardianURL = "https://content.guardianapis.com"
	// The Guardian accepts "test" as a rate-limited developer key.
	DefaultGuardianKey = "test"

	guardianFallbackDescription = "Read more about this agricultural update."
)

// Guardian implements ports.NewsSource over the Guardian content search API.
type Guardian struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGuardian(baseURL, apiKey string, timeout time.Duration) *Guardian {
	if baseURL == "" {
		baseURL = DefaultGuardianURL
	}
	if apiKey == "" {
		apiKey = DefaultGuardianKey
	}
	return &Guardian{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    newHTTPClient(timeout),
	}
}

func (g *Guardian) Name() string { return "guardian" }

type guardianResponse struct {
	Response struct {
		Results []struct {
			WebTitle           string `json:"webTitle"`
			WebURL             string `json:"webUrl"`
			WebPublicationDate string `json:"webPublicationDate"`
			Fields             struct {
				Thumbnail string `json:"thumbnail"`
				TrailText string `json:"trailText"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func (g *Guardian) Search(ctx context.Context, query string) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("show-fields", "thumbnail,trailText")
	q.Set("page-size", "20")
	q.Set("api-key", g.apiKey)

	var body guardianResponse
	if err := getJSON(ctx, g.http, "guardian.search", query, g.baseURL+"/search?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	out := make([]domain.Article, 0, len(body.Response.Results))
	for _, r := range body.Response.Results {
		desc := r.Fields.TrailText
		if desc == "" {
			desc = guardianFallbackDescription
		}
		out = append(out, domain.Article{
			Title:       r.WebTitle,
			Description: desc,
			URL:         r.WebURL,
			PublishedAt: parseTime(r.WebPublicationDate),
			Source:      "The Guardian",
			ImageURL:    r.Fields.Thumbnail,
		})
	}
	return out, nil
}
