package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

const (
	geocodeCacheTTL      = 24 * 60 * 60
	geocodeLookupTimeout = 10 * time.Second
)

// GeocoderService resolves place names, caching matches and collapsing
// concurrent lookups for the same query.
type GeocoderService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
	group    singleflight.Group
}

// NewGeocoderService creates a new GeocoderService. cache may be nil.
func NewGeocoderService(geocoder ports.Geocoder, cache ports.CacheService) *GeocoderService {
	return &GeocoderService{geocoder: geocoder, cache: cache}
}

// Search returns the best match for query, or nil when nothing matches.
func (s *GeocoderService) Search(ctx context.Context, query string) (*domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	cacheKey := "geocode:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var place domain.Place
			if err := json.Unmarshal(data, &place); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				metrics.GeocodeLookups.WithLabelValues("cached").Inc()
				return &place, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		// Callers sharing this lookup outlive the one that started it.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), geocodeLookupTimeout)
		defer cancel()
		return s.geocoder.Lookup(lookupCtx, query)
	})
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	place, _ := v.(*domain.Place)
	if place == nil {
		metrics.GeocodeLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.GeocodeLookups.WithLabelValues("hit").Inc()

	if s.cache != nil {
		if data, err := json.Marshal(place); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, geocodeCacheTTL)
		}
	}

	out := *place
	return &out, nil
}
