package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/eventbus"
)

func cacheWith(t *testing.T, tl domain.Timeline, statuses ...domain.Status) *Cache {
	t.Helper()
	f := newFakeFetcher()
	f.pages[""] = app.RawPage{Statuses: statuses}
	c := New(tl, f, nil)
	consumeAll(t, c)
	return c
}

func TestHandleEvent_DuplicateDeliveryIsIdempotent(t *testing.T) {
	c := cacheWith(t, domain.Home(), status("1", "a"))
	bus := eventbus.New(nil)
	sub := Subscribe(bus, c)
	defer sub.Unsubscribe()

	env := eventbus.Envelope{ID: "dup", Event: eventbus.FavouriteEvent{StatusID: "1", Favourited: true}}
	bus.Deliver(env)
	once := firstPage(t, c)
	bus.Deliver(env)
	twice := firstPage(t, c)

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, twice.Items[0].Status.FavouritesCount)
}

func TestHandleEvent_UnsubscribedCacheIgnoresEvents(t *testing.T) {
	c := cacheWith(t, domain.Home(), status("1", "a"))
	bus := eventbus.New(nil)
	Subscribe(bus, c).Unsubscribe()

	bus.Publish(eventbus.StatusDeletedEvent{StatusID: "1"})

	assert.Equal(t, 1, c.Len())
}

func TestHandleEvent_BlockKeepsAccountTimeline(t *testing.T) {
	own := cacheWith(t, domain.AccountStatuses("a"), status("1", "a"))
	home := cacheWith(t, domain.Home(), status("1", "a"), status("2", "b"))

	assert.False(t, HandleEvent(own, eventbus.BlockEvent{AccountID: "a"}))
	assert.True(t, HandleEvent(home, eventbus.MuteEvent{AccountID: "a"}))

	assert.Equal(t, 1, own.Len())
	assert.Equal(t, []string{"2"}, ids(firstPage(t, home)))
}

func TestHandleEvent_UnfollowOnlyTouchesHome(t *testing.T) {
	tag := cacheWith(t, domain.Hashtag("go"), status("1", "a"))
	home := cacheWith(t, domain.Home(), status("1", "a"))

	assert.False(t, HandleEvent(tag, eventbus.UnfollowEvent{AccountID: "a"}))
	assert.True(t, HandleEvent(home, eventbus.UnfollowEvent{AccountID: "a"}))
	assert.Equal(t, 1, tag.Len())
	assert.Zero(t, home.Len())
}

func TestHandleEvent_StatusEditedReplacesItem(t *testing.T) {
	c := cacheWith(t, domain.Home(), status("1", "a"))
	edited := status("1", "a")
	edited.Content = "fixed typo"

	require.True(t, HandleEvent(c, eventbus.StatusEditedEvent{Status: edited}))
	assert.False(t, HandleEvent(c, eventbus.StatusEditedEvent{Status: status("9", "a")}))

	assert.Equal(t, "fixed typo", firstPage(t, c).Items[0].Status.Content)
}

func TestHandleEvent_StatusEditedReachesBoosts(t *testing.T) {
	c := cacheWith(t, domain.Home(), boost("b1", "x", status("1", "a")))
	edited := status("1", "a")
	edited.Content = "fixed typo"

	require.True(t, HandleEvent(c, eventbus.StatusEditedEvent{Status: edited}))

	it := firstPage(t, c).Items[0]
	assert.Equal(t, "b1", it.ID())
	require.NotNil(t, it.Status.Reblog)
	assert.Equal(t, "fixed typo", it.Status.Reblog.Content)
}

func TestHandleEvent_PollAndPreferences(t *testing.T) {
	c := cacheWith(t, domain.Home(), pollStatus())
	voted := pollStatus().Poll.Vote([]int{1})

	require.True(t, HandleEvent(c, eventbus.PollVoteEvent{StatusID: "7", Poll: voted}))
	require.True(t, HandleEvent(c, eventbus.PreferencesChangedEvent{
		Preferences: domain.DisplayPreferences{AlwaysOpenSpoilers: true},
	}))

	it := firstPage(t, c).Items[0]
	assert.Equal(t, 3, it.Status.Poll.Options[1].VotesCount)
	assert.True(t, it.View.Expanded)
	assert.True(t, c.Preferences().AlwaysOpenSpoilers)
}

func TestHandleEvent_FiltersChangedInvalidates(t *testing.T) {
	c := cacheWith(t, domain.Home(), status("1", "a"))
	ch := c.Changed()

	assert.True(t, HandleEvent(c, eventbus.FiltersChangedEvent{}))

	select {
	case <-ch:
	default:
		t.Fatal("expected invalidation")
	}
}

func TestAdjustCount(t *testing.T) {
	assert.Equal(t, 3, adjustCount(2, false, true))
	assert.Equal(t, 1, adjustCount(2, true, false))
	assert.Equal(t, 2, adjustCount(2, true, true))
	assert.Equal(t, 0, adjustCount(0, true, false))
}

func TestOverrideStore(t *testing.T) {
	s := NewOverrideStore()
	_, ok := s.Get("1")
	assert.False(t, ok)

	st := status("1", "a")
	s.Put("1", Override{Status: &st})
	st.Content = "mutated after put"

	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "post 1", got.Status.Content)

	s.Put("2", Override{View: &domain.ViewState{}})
	assert.Equal(t, 2, s.Len())
	s.Delete("2")
	assert.Equal(t, 1, s.Len())
	s.Clear()
	assert.Zero(t, s.Len())
}
