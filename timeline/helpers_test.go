package timeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
)

// fakeFetcher serves scripted pages keyed by cursor.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]app.RawPage
	errs   map[string]error
	calls  []string
	before func(cursor string) // runs before the response is returned
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]app.RawPage{}, errs: map[string]error{}}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, _ domain.Timeline, cursor string, _ int) (app.RawPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cursor)
	page, ok := f.pages[cursor]
	err := f.errs[cursor]
	hook := f.before
	f.mu.Unlock()

	if hook != nil {
		hook(cursor)
	}
	if err := ctx.Err(); err != nil {
		return app.RawPage{}, domain.NetworkError("fetch", err)
	}
	if err != nil {
		return app.RawPage{}, err
	}
	if !ok {
		return app.RawPage{}, domain.OtherError("fetch", fmt.Errorf("no page for cursor %q", cursor))
	}
	return page, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) setErr(cursor string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, cursor)
		return
	}
	f.errs[cursor] = err
}

func status(id, accountID string) domain.Status {
	return domain.Status{
		ID:      id,
		Content: "post " + id,
		Account: domain.Account{
			ID:   accountID,
			Acct: "user" + accountID,
			URL:  "https://social.example/@user" + accountID,
		},
	}
}

func remoteStatus(id, accountID, host string) domain.Status {
	s := status(id, accountID)
	s.Account.Acct = "user" + accountID + "@" + host
	s.Account.URL = "https://" + host + "/@user" + accountID
	return s
}

func boost(id, boosterID string, inner domain.Status) domain.Status {
	s := status(id, boosterID)
	s.Content = ""
	s.Reblog = &inner
	return s
}

// twoPageFetcher serves statuses 1,2 then 3,4 then the end.
func twoPageFetcher() *fakeFetcher {
	f := newFakeFetcher()
	f.pages[""] = app.RawPage{
		Statuses: []domain.Status{status("1", "a"), status("2", "b")},
		NextKey:  "max_id=2",
	}
	f.pages["max_id=2"] = app.RawPage{
		Statuses: []domain.Status{status("3", "a"), status("4", "c")},
		PrevKey:  "min_id=3",
	}
	return f
}

func ids(p domain.Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.ID())
	}
	return out
}
