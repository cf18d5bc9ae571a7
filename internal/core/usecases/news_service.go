package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

const (
	newsCacheTTL      = 5 * 60
	newsLookupTimeout = 12 * time.Second
)

// NewsService answers news queries from the first provider that has articles,
// falling back to a source that always does.
type NewsService struct {
	sources  []ports.NewsSource
	fallback ports.NewsSource
	cache    ports.CacheService
	group    singleflight.Group
}

// NewNewsService tries sources in order and ends with fallback. cache may be nil.
func NewNewsService(sources []ports.NewsSource, fallback ports.NewsSource, cache ports.CacheService) *NewsService {
	return &NewsService{sources: sources, fallback: fallback, cache: cache}
}

// Latest returns the feed for query, or for DefaultNewsQuery when query is blank.
func (s *NewsService) Latest(ctx context.Context, query string) (*domain.NewsFeed, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = domain.DefaultNewsQuery
	}

	cacheKey := "news:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var feed domain.NewsFeed
			if err := json.Unmarshal(data, &feed); err == nil {
				metrics.CacheHits.WithLabelValues("news").Inc()
				return &feed, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("news").Inc()
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		// Detached so one caller going away does not fail the others sharing this lookup.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), newsLookupTimeout)
		defer cancel()
		return s.fetch(lookupCtx, query)
	})
	if err != nil {
		return nil, err
	}
	feed := v.(*domain.NewsFeed)

	// Only live results are cached; the curated list is rebuilt per request.
	if s.cache != nil && feed.Provider != s.fallback.Name() {
		if data, err := json.Marshal(feed); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, newsCacheTTL)
		}
	}

	out := *feed
	return &out, nil
}

func (s *NewsService) fetch(ctx context.Context, query string) (*domain.NewsFeed, error) {
	for _, src := range s.sources {
		articles, err := src.Search(ctx, query)
		switch {
		case err != nil:
			metrics.NewsFetches.WithLabelValues(src.Name(), "error").Inc()
			slog.WarnContext(ctx, "news provider failed", "provider", src.Name(), "error", err)
			continue
		case len(articles) == 0:
			metrics.NewsFetches.WithLabelValues(src.Name(), "empty").Inc()
			continue
		}
		metrics.NewsFetches.WithLabelValues(src.Name(), "hit").Inc()
		return newFeed(query, src.Name(), articles), nil
	}

	articles, err := s.fallback.Search(ctx, query)
	if err != nil {
		metrics.NewsFetches.WithLabelValues(s.fallback.Name(), "error").Inc()
		return nil, err
	}
	metrics.NewsFetches.WithLabelValues(s.fallback.Name(), "hit").Inc()
	return newFeed(query, s.fallback.Name(), articles), nil
}

func newFeed(query, provider string, articles []domain.Article) *domain.NewsFeed {
	return &domain.NewsFeed{
		Query:    query,
		Articles: articles,
		Total:    len(articles),
		Provider: provider,
	}
}
