package app

import (
	"context"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

// RawPage is one response of the remote timeline endpoint before overrides
// and filters are applied.
type RawPage struct {
	Statuses []domain.Status
	PrevKey  string
	NextKey  string // Empty when the end of the timeline was reached
}

// TimelineFetcher fetches pages of a timeline.
type TimelineFetcher interface {
	// FetchPage returns the page after cursor, or the newest page when
	// cursor is empty. Errors are *domain.FetchError.
	FetchPage(ctx context.Context, tl domain.Timeline, cursor string, limit int) (RawPage, error)
}

// FilterFetcher returns the user's configured filters.
type FilterFetcher interface {
	FetchFilters(ctx context.Context) ([]domain.FilterRule, error)
}

// TrendingFetcher returns currently trending hashtags.
type TrendingFetcher interface {
	FetchTrendingTags(ctx context.Context, limit int) ([]domain.Tag, error)
}
