// Package timeline keeps an in-memory, session-scoped cache of one remote
// timeline and produces pages from it with local overrides and filters
// applied.
package timeline

import (
	"errors"
	"strings"
	"sync"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

const defaultPageSize = 20

var (
	// ErrStale is returned by a pager opened before the last invalidation.
	// Open a new pager to continue.
	ErrStale = errors.New("timeline: pager is stale")

	// ErrClosed is returned once the owning session has ended.
	ErrClosed = errors.New("timeline: cache closed")
)

// FilterEvaluator decides whether a status is shown.
type FilterEvaluator interface {
	Evaluate(s domain.Status, fctx domain.FilterContext) domain.FilterVerdict
}

// Recorder receives cache metrics. All methods must be safe for concurrent use.
type Recorder interface {
	PageFetched(timeline string, statuses int)
	FetchFailed(timeline string, kind domain.ErrorKind)
	StatusesHidden(timeline string, n int)
}

type nopRecorder struct{}

func (nopRecorder) PageFetched(string, int)              {}
func (nopRecorder) FetchFailed(string, domain.ErrorKind) {}
func (nopRecorder) StatusesHidden(string, int)           {}

type showAll struct{}

func (showAll) Evaluate(domain.Status, domain.FilterContext) domain.FilterVerdict {
	return domain.FilterVerdict{}
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(l logger.Logger) Option { return func(c *Cache) { c.log = l } }

func WithPageSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithPreferences(p domain.DisplayPreferences) Option {
	return func(c *Cache) { c.prefs = p }
}

// WithOverrides shares an existing override store instead of a fresh one.
func WithOverrides(s *OverrideStore) Option { return func(c *Cache) { c.overrides = s } }

func WithRecorder(r Recorder) Option { return func(c *Cache) { c.metrics = r } }

// page is one fetched batch as the remote returned it.
type page struct {
	statuses []domain.Status
	prevKey  string
	nextKey  string
}

// Cache holds the statuses fetched for one timeline during one session.
type Cache struct {
	timeline  domain.Timeline
	fetcher   app.TimelineFetcher
	filters   FilterEvaluator
	overrides *OverrideStore
	log       logger.Logger
	metrics   Recorder
	pageSize  int

	mu         sync.Mutex
	pages      []page
	anchor     string // Cursor pages[0] was fetched from; "" is the newest page
	generation uint64 // Bumped by every invalidation
	epoch      uint64 // Bumped when fetched data is discarded
	closed     bool
	changed    chan struct{}
	prefs      domain.DisplayPreferences
}

// New creates a cache for tl. filters may be nil to show everything.
func New(tl domain.Timeline, fetcher app.TimelineFetcher, filters FilterEvaluator, opts ...Option) *Cache {
	if filters == nil {
		filters = showAll{}
	}
	c := &Cache{
		timeline: tl,
		fetcher:  fetcher,
		filters:  filters,
		log:      logger.NewNop(),
		metrics:  nopRecorder{},
		pageSize: defaultPageSize,
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overrides == nil {
		c.overrides = NewOverrideStore()
	}
	return c
}

// Timeline returns the identifier this cache serves.
func (c *Cache) Timeline() domain.Timeline { return c.timeline }

// Overrides returns the session's override store.
func (c *Cache) Overrides() *OverrideStore { return c.overrides }

// Changed returns a channel closed at the next invalidation.
func (c *Cache) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Invalidate marks produced pages as stale. Pagers opened afterwards replay
// the cached statuses with the current overrides and filters.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Cache) invalidateLocked() {
	c.generation++
	close(c.changed)
	c.changed = make(chan struct{})
}

// Reload discards every fetched status so the next pager starts again at
// the newest page. Overrides are kept.
func (c *Cache) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pages = nil
	c.anchor = ""
	c.epoch++
	c.invalidateLocked()
	c.log.Debug("timeline reloaded", logger.String("timeline", c.timeline.Key()))
}

// Close ends the session. Outstanding fetches are discarded.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.epoch++
	c.invalidateLocked()
}

// SetPreferences swaps the display preferences and invalidates.
func (c *Cache) SetPreferences(p domain.DisplayPreferences) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefs = p
	c.invalidateLocked()
}

// Preferences returns the current display preferences.
func (c *Cache) Preferences() domain.DisplayPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// RemoveItem drops the status with id, or any boost of it, and invalidates.
func (c *Cache) RemoveItem(id string) int {
	return c.removeWhere(func(s domain.Status) bool {
		return s.ID == id || s.ActionableID() == id
	})
}

// RemoveAllByAccountID drops every status authored or boosted by accountID
// and invalidates.
func (c *Cache) RemoveAllByAccountID(accountID string) int {
	return c.removeWhere(func(s domain.Status) bool {
		return s.Account.ID == accountID || s.Actionable().Account.ID == accountID
	})
}

// RemoveAllByInstance drops every status whose author or boosted author
// lives on host and invalidates. A blank host removes nothing.
func (c *Cache) RemoveAllByInstance(host string) int {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return 0
	}
	return c.removeWhere(func(s domain.Status) bool {
		return s.Account.Instance() == host || s.Actionable().Account.Instance() == host
	})
}

func (c *Cache) removeWhere(match func(domain.Status) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for i := range c.pages {
		kept := c.pages[i].statuses[:0]
		for _, s := range c.pages[i].statuses {
			if match(s) {
				c.overrides.Delete(s.ID)
				removed++
				continue
			}
			kept = append(kept, s)
		}
		c.pages[i].statuses = kept
	}
	c.invalidateLocked()
	return removed
}

// UpdateItem replaces the status with id by fn's result. It does not
// invalidate; callers do after a batch of updates.
func (c *Cache) UpdateItem(id string, fn func(domain.Status) domain.Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.pages {
		for j, s := range c.pages[i].statuses {
			if s.ID == id {
				c.pages[i].statuses[j] = fn(s.Clone())
				return true
			}
		}
	}
	return false
}

// UpdateActionableItem applies fn to the actionable status of every cached
// status whose id or actionable id is id, so a post and its boosts stay in
// sync. It returns the number of statuses updated and does not invalidate.
func (c *Cache) UpdateActionableItem(id string, fn func(domain.Status) domain.Status) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for i := range c.pages {
		for j, s := range c.pages[i].statuses {
			if s.ID == id || s.ActionableID() == id {
				c.pages[i].statuses[j] = s.Clone().WithActionable(fn)
				n++
			}
		}
	}
	return n
}

// Item returns the cached status with id. An id that only matches the
// actionable status of a boost resolves to the first such boost.
func (c *Cache) Item(id string) (domain.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.findLocked(id)
	if !ok {
		return domain.Status{}, false
	}
	return s.Clone(), true
}

func (c *Cache) findLocked(id string) (domain.Status, bool) {
	var boosted *domain.Status
	for _, p := range c.pages {
		for i, s := range p.statuses {
			if s.ID == id {
				return s, true
			}
			if boosted == nil && s.ActionableID() == id {
				boosted = &p.statuses[i]
			}
		}
	}
	if boosted != nil {
		return *boosted, true
	}
	return domain.Status{}, false
}

// ViewState returns the current overlay of the status with id: its override
// if one exists, the default derived from the cached status otherwise. id
// resolves the way it does for Item.
func (c *Cache) ViewState(id string) (domain.ViewState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, found := c.findLocked(id)
	if found {
		id = s.ID
	}
	if o, ok := c.overrides.Get(id); ok && o.View != nil {
		return *o.View, true
	}
	if !found {
		return domain.ViewState{}, false
	}
	return domain.DefaultViewState(s, c.prefs), true
}

// Len returns the number of cached statuses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, p := range c.pages {
		n += len(p.statuses)
	}
	return n
}

// render builds the emitted page: overrides win, then Home-only
// preferences and the filter evaluator drop statuses. Order is preserved.
func (c *Cache) renderLocked(p page) domain.Page {
	out := domain.Page{
		Items:   make([]domain.StatusViewData, 0, len(p.statuses)),
		PrevKey: p.prevKey,
		NextKey: p.nextKey,
	}
	fctx := c.timeline.FilterContext()
	hidden := 0
	for _, fetched := range p.statuses {
		st := fetched.Clone()
		view := domain.DefaultViewState(st, c.prefs)
		if o, ok := c.overrides.Get(st.ID); ok {
			st, view = o.apply(st, view)
		}
		if c.suppressedByPreferences(st) {
			continue
		}
		verdict := c.filters.Evaluate(st, fctx)
		if verdict.Action == domain.FilterHide {
			hidden++
			continue
		}
		out.Items = append(out.Items, domain.StatusViewData{
			Status:      st,
			View:        view,
			Filter:      verdict.Action,
			FilterTitle: verdict.Title,
		})
	}
	if hidden > 0 {
		c.metrics.StatusesHidden(c.timeline.Key(), hidden)
	}
	return out
}

func (c *Cache) suppressedByPreferences(s domain.Status) bool {
	if c.timeline.Kind != domain.TimelineHome && c.timeline.Kind != domain.TimelineList {
		return false
	}
	if c.prefs.HideBoosts && s.Reblog != nil {
		return true
	}
	return c.prefs.HideReplies && s.Reblog == nil && s.InReplyToID != ""
}

// appendLocked adds a fetched page, dropping statuses already cached.
func (c *Cache) appendLocked(raw app.RawPage) {
	seen := make(map[string]struct{})
	for _, p := range c.pages {
		for _, s := range p.statuses {
			seen[s.ID] = struct{}{}
		}
	}
	fresh := make([]domain.Status, 0, len(raw.Statuses))
	for _, s := range raw.Statuses {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		fresh = append(fresh, s.Clone())
	}
	c.pages = append(c.pages, page{statuses: fresh, prevKey: raw.PrevKey, nextKey: raw.NextKey})
}

// Override writes o for id into the override store and invalidates so the
// next pull reflects it.
func (c *Cache) Override(id string, o Override) {
	c.overrides.Put(id, o)
	c.Invalidate()
}
