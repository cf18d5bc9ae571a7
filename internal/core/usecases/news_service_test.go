package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/core/ports"
	"github.com/kunaldubey10/Agrishield/internal/core/usecases"
)

func newsChain() (primary, secondary, curated *mockNewsSource) {
	primary = &mockNewsSource{name: "newsdata"}
	secondary = &mockNewsSource{name: "guardian"}
	curated = &mockNewsSource{name: "curated", searchFn: func(context.Context, string) ([]domain.Article, error) {
		return articlesFrom("ICAR", "Curated headline"), nil
	}}
	return
}

func TestNewsService_FirstProviderWins(t *testing.T) {
	primary, secondary, curated := newsChain()
	primary.searchFn = func(_ context.Context, q string) ([]domain.Article, error) {
		assert.Equal(t, "rice", q)
		return articlesFrom("agrinews", "Paddy sowing up", "Rice exports rise"), nil
	}
	svc := usecases.NewNewsService([]ports.NewsSource{primary, secondary}, curated, nil)

	feed, err := svc.Latest(context.Background(), " rice ")
	require.NoError(t, err)
	assert.Equal(t, "newsdata", feed.Provider)
	assert.Equal(t, 2, feed.Total)
	assert.Equal(t, "rice", feed.Query)
	assert.Zero(t, secondary.calls.Load())
	assert.Zero(t, curated.calls.Load())
}

func TestNewsService_FallsThroughFailuresAndEmptyResults(t *testing.T) {
	primary, secondary, curated := newsChain()
	primary.searchFn = func(context.Context, string) ([]domain.Article, error) {
		return nil, errors.New("401 unauthorized")
	}
	secondary.searchFn = func(context.Context, string) ([]domain.Article, error) {
		return articlesFrom("The Guardian", "Monsoon arrives"), nil
	}
	svc := usecases.NewNewsService([]ports.NewsSource{primary, secondary}, curated, nil)

	feed, err := svc.Latest(context.Background(), "monsoon")
	require.NoError(t, err)
	assert.Equal(t, "guardian", feed.Provider)

	secondary.searchFn = nil
	feed, err = svc.Latest(context.Background(), "monsoon")
	require.NoError(t, err)
	assert.Equal(t, "curated", feed.Provider)
	assert.Equal(t, "Curated headline", feed.Articles[0].Title)
}

func TestNewsService_BlankQueryUsesDefault(t *testing.T) {
	primary, _, curated := newsChain()
	primary.searchFn = func(_ context.Context, q string) ([]domain.Article, error) {
		assert.Equal(t, domain.DefaultNewsQuery, q)
		return articlesFrom("x", "y"), nil
	}
	svc := usecases.NewNewsService([]ports.NewsSource{primary}, curated, nil)

	feed, err := svc.Latest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNewsQuery, feed.Query)
}

func TestNewsService_CachesLiveFeedsOnly(t *testing.T) {
	primary, _, curated := newsChain()
	svc := usecases.NewNewsService([]ports.NewsSource{primary}, curated, newMemCache())

	// Curated answers are not cached, so the provider is retried.
	for i := 0; i < 2; i++ {
		_, err := svc.Latest(context.Background(), "wheat")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), primary.calls.Load())

	primary.searchFn = func(context.Context, string) ([]domain.Article, error) {
		return articlesFrom("agrinews", "Wheat procurement opens"), nil
	}
	for i := 0; i < 2; i++ {
		feed, err := svc.Latest(context.Background(), "Wheat")
		require.NoError(t, err)
		assert.Equal(t, "newsdata", feed.Provider)
	}
	assert.Equal(t, int32(3), primary.calls.Load())
}

func TestNewsService_CancelledCallerDoesNotFailLookup(t *testing.T) {
	primary, _, curated := newsChain()
	primary.searchFn = func(ctx context.Context, _ string) ([]domain.Article, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return articlesFrom("agrinews", "Still delivered"), nil
	}
	svc := usecases.NewNewsService([]ports.NewsSource{primary}, curated, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	feed, err := svc.Latest(ctx, "cotton")
	require.NoError(t, err)
	assert.Equal(t, "newsdata", feed.Provider)
}
