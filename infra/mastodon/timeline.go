package mastodon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomnomnom/linkheader"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
)

// cursorParams are the query parameters a page cursor may carry.
var cursorParams = []string{"max_id", "min_id", "since_id", "offset"}

// timelineService implements app.TimelineFetcher, app.FilterFetcher and
// app.TrendingFetcher using the Mastodon API.
type timelineService struct {
	client *Client
}

// NewTimelineService creates a timeline fetcher backed by Mastodon.
func NewTimelineService(client *Client) *timelineService {
	return &timelineService{client: client}
}

// FetchPage loads one page of tl. cursor is a key from a previous page, e.g.
// "max_id=123"; empty loads the newest page.
func (s *timelineService) FetchPage(ctx context.Context, tl domain.Timeline, cursor string, limit int) (app.RawPage, error) {
	path, q, err := timelineEndpoint(tl)
	if err != nil {
		return app.RawPage{}, err
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		cq, err := url.ParseQuery(cursor)
		if err != nil {
			return app.RawPage{}, domain.OtherError("fetch "+tl.Key(), fmt.Errorf("bad cursor %q: %w", cursor, err))
		}
		for _, k := range cursorParams {
			if v := cq.Get(k); v != "" {
				q.Set(k, v)
			}
		}
	}
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	resp, err := s.client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return app.RawPage{}, fmt.Errorf("fetching timeline %s: %w", tl.Key(), err)
	}

	var statuses []mastodonStatus
	if err := decode("fetch "+tl.Key(), resp.body, &statuses); err != nil {
		return app.RawPage{}, fmt.Errorf("parsing timeline %s: %w", tl.Key(), err)
	}

	page := app.RawPage{Statuses: mapStatuses(statuses)}
	if link := resp.header.Get("Link"); link != "" {
		page.NextKey = cursorFromLinks(link, "next")
		page.PrevKey = cursorFromLinks(link, "prev")
	} else if len(statuses) > 0 {
		page.NextKey = fallbackNextKey(tl, statuses, parseCursor(cursor))
	}
	return page, nil
}

// timelineEndpoint maps a timeline to its API path and fixed query.
func timelineEndpoint(tl domain.Timeline) (string, url.Values, error) {
	q := url.Values{}
	switch tl.Kind {
	case domain.TimelineHome:
		return "/api/v1/timelines/home", q, nil
	case domain.TimelineLocal:
		q.Set("local", "true")
		return "/api/v1/timelines/public", q, nil
	case domain.TimelineFederated:
		return "/api/v1/timelines/public", q, nil
	case domain.TimelineHashtag:
		if len(tl.Tags) == 0 {
			return "", nil, domain.OtherError("fetch "+tl.Key(), domain.ErrInvalidTimeline)
		}
		for _, t := range tl.Tags[1:] {
			q.Add("any[]", t)
		}
		return "/api/v1/timelines/tag/" + url.PathEscape(tl.Tags[0]), q, nil
	case domain.TimelineAccount:
		q.Set("exclude_replies", "true")
		return accountPath(tl), q, nil
	case domain.TimelineAccountWithReplies:
		return accountPath(tl), q, nil
	case domain.TimelineAccountPinned:
		q.Set("pinned", "true")
		return accountPath(tl), q, nil
	case domain.TimelineList:
		return "/api/v1/timelines/list/" + url.PathEscape(tl.ID), q, nil
	case domain.TimelineBookmarks:
		return "/api/v1/bookmarks", q, nil
	case domain.TimelineFavourites:
		return "/api/v1/favourites", q, nil
	case domain.TimelineTrending:
		return "/api/v1/trends/statuses", q, nil
	default:
		return "", nil, domain.OtherError("fetch "+tl.Key(), domain.ErrInvalidTimeline)
	}
}

func accountPath(tl domain.Timeline) string {
	return fmt.Sprintf("/api/v1/accounts/%s/statuses", url.PathEscape(tl.ID))
}

// cursorFromLinks extracts the pagination parameters of the link with rel.
func cursorFromLinks(header, rel string) string {
	for _, l := range linkheader.Parse(header).FilterByRel(rel) {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		return cursorKey(u.Query())
	}
	return ""
}

func cursorKey(q url.Values) string {
	out := url.Values{}
	for _, k := range cursorParams {
		if v := q.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out.Encode()
}

// fallbackNextKey is used when the server sends no Link header: trends page
// by offset, everything else by the last id.
func fallbackNextKey(tl domain.Timeline, statuses []mastodonStatus, prev url.Values) string {
	if tl.Kind == domain.TimelineTrending {
		offset, _ := strconv.Atoi(prev.Get("offset"))
		return "offset=" + strconv.Itoa(offset+len(statuses))
	}
	return "max_id=" + url.QueryEscape(statuses[len(statuses)-1].ID)
}

func parseCursor(cursor string) url.Values {
	q, _ := url.ParseQuery(cursor)
	return q
}

// FetchFilters returns the user's v2 filters.
func (s *timelineService) FetchFilters(ctx context.Context) ([]domain.FilterRule, error) {
	data, err := s.client.Get(ctx, "/api/v2/filters")
	if err != nil {
		return nil, fmt.Errorf("fetching filters: %w", err)
	}
	var filters []mastodonFilter
	if err := decode("fetch filters", data, &filters); err != nil {
		return nil, err
	}
	out := make([]domain.FilterRule, 0, len(filters))
	for _, f := range filters {
		out = append(out, mapFilter(f))
	}
	return out, nil
}

// FetchTrendingTags returns the instance's trending hashtags.
func (s *timelineService) FetchTrendingTags(ctx context.Context, limit int) ([]domain.Tag, error) {
	path := "/api/v1/trends/tags"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching trending tags: %w", err)
	}
	var tags []mastodonTag
	if err := decode("fetch trending tags", data, &tags); err != nil {
		return nil, err
	}
	out := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		out = append(out, mapTag(t))
	}
	return out, nil
}
