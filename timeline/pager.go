package timeline

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Pager pulls pages from a Cache on demand. A pager is bound to the
// invalidation generation it was opened in; once the cache is invalidated
// Next returns ErrStale and the consumer opens a new one.
type Pager struct {
	cache      *Cache
	generation uint64
	cursor     string
	index      int
	started    bool
}

// Open starts a page sequence at cursor, a NextKey from an earlier page of
// this cache, or at the current reload point when cursor is empty.
func (c *Cache) Open(cursor string) *Pager {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Pager{cache: c, generation: c.generation, cursor: cursor}
}

// Next returns the next page. Cached pages are replayed without touching
// the network; the remote is asked only to extend past the last cached
// page. io.EOF marks the end of the timeline. A failed fetch leaves the
// pager where it was so the call can be retried.
func (p *Pager) Next(ctx context.Context) (domain.Page, error) {
	c := p.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := p.checkLocked(); err != nil {
		return domain.Page{}, err
	}

	if !p.started {
		if err := p.startLocked(ctx); err != nil {
			return domain.Page{}, err
		}
	}

	if p.index < len(c.pages) {
		pg := c.pages[p.index]
		p.index++
		return c.renderLocked(pg), nil
	}

	cursor := c.anchor
	if p.index > 0 {
		cursor = c.pages[p.index-1].nextKey
		if cursor == "" {
			return domain.Page{}, io.EOF
		}
	}

	want := len(c.pages)
	if err := p.fetchLocked(ctx, cursor, func(raw app.RawPage) {
		if len(c.pages) == want {
			c.appendLocked(raw)
		}
	}); err != nil {
		return domain.Page{}, err
	}

	if p.index >= len(c.pages) {
		return domain.Page{}, io.EOF
	}
	pg := c.pages[p.index]
	p.index++
	return c.renderLocked(pg), nil
}

// startLocked positions a fresh pager. A cursor matching a cached page
// boundary resumes there; an unknown cursor refetches from it and replaces
// the cached data.
func (p *Pager) startLocked(ctx context.Context) error {
	c := p.cache
	if p.cursor == "" || (p.cursor == c.anchor && len(c.pages) > 0) {
		p.index = 0
		p.started = true
		return nil
	}
	for i, pg := range c.pages {
		if pg.nextKey == p.cursor {
			p.index = i + 1
			p.started = true
			return nil
		}
	}

	cursor := p.cursor
	err := p.fetchLocked(ctx, cursor, func(raw app.RawPage) {
		c.pages = nil
		c.anchor = cursor
		c.appendLocked(raw)
		c.epoch++
		c.invalidateLocked()
		p.generation = c.generation
	})
	if err != nil {
		return err
	}
	p.index = 0
	p.started = true
	return nil
}

// fetchLocked releases the lock around the remote call and runs commit
// with the lock held when the result is still wanted.
func (p *Pager) fetchLocked(ctx context.Context, cursor string, commit func(app.RawPage)) error {
	c := p.cache
	epoch := c.epoch
	key := c.timeline.Key()

	c.mu.Unlock()
	raw, err := c.fetcher.FetchPage(ctx, c.timeline, cursor, c.pageSize)
	c.mu.Lock()

	if c.closed {
		return ErrClosed
	}
	if c.epoch != epoch {
		// Reloaded while the request was in flight.
		return ErrStale
	}
	if err != nil {
		kind := domain.KindOf(err)
		c.metrics.FetchFailed(key, kind)
		c.log.Warn("timeline fetch failed",
			logger.String("timeline", key),
			logger.String("cursor", cursor),
			logger.String("kind", kind.String()),
			logger.Error(err))
		return err
	}
	c.metrics.PageFetched(key, len(raw.Statuses))
	commit(raw)

	if p.generation != c.generation {
		return ErrStale
	}
	return nil
}

func (p *Pager) checkLocked() error {
	if p.cache.closed {
		return ErrClosed
	}
	if p.generation != p.cache.generation {
		return ErrStale
	}
	return nil
}

// All iterates pages until the end of the timeline or the first error.
// io.EOF is not reported.
func (p *Pager) All(ctx context.Context) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		for {
			pg, err := p.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(pg, err) || err != nil {
				return
			}
		}
	}
}

// Load pulls the next page as a Resource. The end of the timeline is a
// success with an empty page.
func (p *Pager) Load(ctx context.Context) domain.Resource[domain.Page] {
	pg, err := p.Next(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return domain.Success(&domain.Page{})
	case err != nil:
		return domain.Failure[domain.Page](domain.ErrorMessage(err), err, nil)
	default:
		return domain.Success(&pg)
	}
}
