// Package trending loads trending hashtags, drops the ones the user
// filters out and orders the rest by recent use.
package trending

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

const defaultLimit = 20

// State is the load state of the trending list.
type State int

const (
	StateInitial State = iota
	StateLoading
	StateRefreshing
	StateLoaded
	StateErrorNetwork
	StateErrorOther
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRefreshing:
		return "refreshing"
	case StateLoaded:
		return "loaded"
	case StateErrorNetwork:
		return "error_network"
	case StateErrorOther:
		return "error_other"
	default:
		return "initial"
	}
}

// Snapshot is one published state.
type Snapshot struct {
	State State
	Tags  []domain.Tag
	Err   error
}

// Source is what the model needs from the remote.
type Source interface {
	app.TrendingFetcher
	app.FilterFetcher
}

// Model holds the trending list for one session.
type Model struct {
	src   Source
	log   logger.Logger
	limit int
	now   func() time.Time

	mu     sync.Mutex
	snap   Snapshot
	runID  uint64
	nextID int
	subs   map[int]func(Snapshot)
}

// New creates a model in StateInitial.
func New(src Source, log logger.Logger) *Model {
	if log == nil {
		log = logger.NewNop()
	}
	return &Model{
		src:   src,
		log:   log,
		limit: defaultLimit,
		now:   time.Now,
		subs:  make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe calls fn with every published snapshot. fn runs with the
// model locked and must not call back into it. The returned func removes
// the subscription.
func (m *Model) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Invalidate reloads the list and returns the final snapshot. refresh marks
// a user-triggered reload of an already loaded or failed list. A run that is
// cancelled or superseded by a newer Invalidate publishes nothing further.
// Callers that must not block run it in a goroutine.
func (m *Model) Invalidate(ctx context.Context, refresh bool) Snapshot {
	m.mu.Lock()
	m.runID++
	run := m.runID
	pending := StateLoading
	if refresh && m.snap.State != StateInitial {
		pending = StateRefreshing
	}
	m.publishLocked(Snapshot{State: pending, Tags: m.snap.Tags})
	m.mu.Unlock()

	final := m.load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if run != m.runID || ctx.Err() != nil {
		return m.snap
	}
	m.publishLocked(final)
	return final
}

func (m *Model) load(ctx context.Context) Snapshot {
	var (
		tags       []domain.Tag
		rules      []domain.FilterRule
		filtersErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = m.src.FetchTrendingTags(gctx, m.limit)
		return err
	})
	// A failed filter fetch must not fail the list.
	g.Go(func() error {
		rules, filtersErr = m.src.FetchFilters(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		m.log.Warn("trending tags fetch failed", logger.Error(err))
		return failed(err)
	}

	if len(tags) == 0 {
		return Snapshot{State: StateLoaded, Tags: []domain.Tag{}}
	}

	if filtersErr != nil {
		m.log.Warn("filters fetch failed, showing all trending tags", logger.Error(filtersErr))
		rules = nil
	}
	return Snapshot{State: StateLoaded, Tags: Rank(tags, rules, m.now())}
}

func failed(err error) Snapshot {
	state := StateErrorOther
	if domain.IsNetwork(err) || errors.Is(err, context.DeadlineExceeded) {
		state = StateErrorNetwork
	}
	return Snapshot{State: state, Err: err}
}

// Rank drops tags matching a keyword of a home filter active at now and
// sorts the rest by summed history uses, most used first. Ties keep the
// server's order.
func Rank(tags []domain.Tag, rules []domain.FilterRule, now time.Time) []domain.Tag {
	excluded := make(map[string]struct{})
	for _, r := range rules {
		if !r.AppliesTo(domain.FilterContextHome, now) {
			continue
		}
		for _, k := range r.Keywords {
			excluded[strings.ToLower(strings.TrimSpace(k.Keyword))] = struct{}{}
		}
	}

	out := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		if _, ok := excluded[strings.ToLower(t.Name)]; ok {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Uses() > out[j].Uses() })
	return out
}

func (m *Model) publishLocked(s Snapshot) {
	m.snap = s
	for _, fn := range m.subs {
		fn(s)
	}
}
