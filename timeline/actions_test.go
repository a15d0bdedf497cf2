package timeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/fedtimeline/app"
	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/eventbus"
)

type fakeRemote struct {
	err     error
	calls   []string
	pollOut domain.Poll
}

func (f *fakeRemote) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRemote) Favourite(_ context.Context, id string, on bool) (domain.Status, error) {
	return domain.Status{ID: id, Favourited: on}, f.record("favourite " + id)
}

func (f *fakeRemote) Bookmark(_ context.Context, id string, on bool) (domain.Status, error) {
	return domain.Status{ID: id, Bookmarked: on}, f.record("bookmark " + id)
}

func (f *fakeRemote) Reblog(_ context.Context, id string, on bool) (domain.Status, error) {
	return domain.Status{ID: id, Reblogged: on}, f.record("reblog " + id)
}

func (f *fakeRemote) Pin(_ context.Context, id string, on bool) (domain.Status, error) {
	return domain.Status{ID: id, Pinned: on}, f.record("pin " + id)
}

func (f *fakeRemote) VoteInPoll(_ context.Context, pollID string, _ []int) (domain.Poll, error) {
	return f.pollOut, f.record("vote " + pollID)
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeRemote) CurrentAccountID(context.Context) (string, error) { return "me", nil }

func (f *fakeRemote) BlockUser(_ context.Context, id string) error { return f.record("block " + id) }

func (f *fakeRemote) MuteUser(_ context.Context, id string) error { return f.record("mute " + id) }

func (f *fakeRemote) UnfollowUser(_ context.Context, id string) error {
	return f.record("unfollow " + id)
}

func (f *fakeRemote) BlockDomain(_ context.Context, d string) error {
	return f.record("block_domain " + d)
}

var (
	_ app.StatusActions  = (*fakeRemote)(nil)
	_ app.AccountService = (*fakeRemote)(nil)
)

func pollStatus() domain.Status {
	s := status("7", "a")
	s.Poll = &domain.Poll{
		ID:      "p7",
		Options: []domain.PollOption{{Title: "yes"}, {Title: "no", VotesCount: 2}},
	}
	return s
}

func actionsFixture(t *testing.T) (*Cache, *Actions, *fakeRemote, *eventbus.Bus) {
	t.Helper()
	f := newFakeFetcher()
	f.pages[""] = app.RawPage{Statuses: []domain.Status{
		status("1", "a"),
		boost("2", "b", status("20", "c")),
		pollStatus(),
		remoteStatus("8", "x", "far.example"),
	}}
	c := New(domain.Home(), f, nil)
	consumeAll(t, c)

	bus := eventbus.New(nil)
	remote := &fakeRemote{}
	return c, NewActions(c, remote, remote, bus), remote, bus
}

func itemByID(t *testing.T, c *Cache, id string) domain.StatusViewData {
	t.Helper()
	for _, it := range firstPage(t, c).Items {
		if it.ID() == id {
			return it
		}
	}
	t.Fatalf("status %s not emitted", id)
	return domain.StatusViewData{}
}

func TestActions_FavouriteUpdatesActionableAndPublishes(t *testing.T) {
	c, a, remote, bus := actionsFixture(t)
	var published []eventbus.Event
	bus.Subscribe(func(env eventbus.Envelope) { published = append(published, env.Event) })

	require.NoError(t, a.Favourite(context.Background(), "2", true))

	it := itemByID(t, c, "2")
	assert.True(t, it.Status.Reblog.Favourited)
	assert.Equal(t, 1, it.Status.Reblog.FavouritesCount)
	assert.Equal(t, []string{"favourite 20"}, remote.calls)
	assert.Equal(t, []eventbus.Event{eventbus.FavouriteEvent{StatusID: "20", Favourited: true}}, published)
}

func TestActions_FailedActionRollsBack(t *testing.T) {
	c, a, remote, bus := actionsFixture(t)
	remote.err = domain.NetworkError("favourite", errors.New("offline"))
	published := 0
	bus.Subscribe(func(eventbus.Envelope) { published++ })

	err := a.Bookmark(context.Background(), "1", true)

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.False(t, itemByID(t, c, "1").Status.Bookmarked)
	assert.Zero(t, published)
}

func TestActions_SubscribedCacheSeesOwnEventIdempotently(t *testing.T) {
	c, a, _, bus := actionsFixture(t)
	sub := Subscribe(bus, c)
	defer sub.Unsubscribe()

	require.NoError(t, a.Reblog(context.Background(), "1", true))

	it := itemByID(t, c, "1")
	assert.True(t, it.Status.Reblogged)
	assert.Equal(t, 1, it.Status.ReblogsCount)
}

func TestActions_PinAndUnknownStatus(t *testing.T) {
	c, a, _, _ := actionsFixture(t)

	require.NoError(t, a.Pin(context.Background(), "1", true))
	assert.True(t, itemByID(t, c, "1").Status.Pinned)

	err := a.Pin(context.Background(), "nope", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActions_VoteUsesServerPoll(t *testing.T) {
	c, a, remote, _ := actionsFixture(t)
	remote.pollOut = domain.Poll{
		ID:         "p7",
		Voted:      true,
		OwnVotes:   []int{0},
		VotesCount: 10,
		Options:    []domain.PollOption{{Title: "yes", VotesCount: 5}, {Title: "no", VotesCount: 5}},
	}

	require.NoError(t, a.VoteInPoll(context.Background(), "7", []int{0}))

	poll := itemByID(t, c, "7").Status.Poll
	require.NotNil(t, poll)
	assert.Equal(t, 10, poll.VotesCount)
	assert.True(t, poll.Voted)
}

func TestActions_FailedVoteRestoresPoll(t *testing.T) {
	c, a, remote, _ := actionsFixture(t)
	remote.err = errors.New("expired")

	require.Error(t, a.VoteInPoll(context.Background(), "7", []int{0}))

	poll := itemByID(t, c, "7").Status.Poll
	assert.False(t, poll.Voted)
	assert.Equal(t, 0, poll.Options[0].VotesCount)

	assert.Error(t, a.VoteInPoll(context.Background(), "1", []int{0}))
}

func TestActions_ModerationRemovesContent(t *testing.T) {
	c, a, remote, _ := actionsFixture(t)

	require.NoError(t, a.BlockAccount(context.Background(), "a"))
	require.NoError(t, a.MuteDomain(context.Background(), "far.example"))
	require.NoError(t, a.Delete(context.Background(), "2"))

	assert.Empty(t, ids(firstPage(t, c)))
	assert.Equal(t, []string{"block a", "block_domain far.example", "delete 2"}, remote.calls)
}

func TestActions_MuteAndUnfollowOnHome(t *testing.T) {
	c, a, _, _ := actionsFixture(t)

	require.NoError(t, a.MuteAccount(context.Background(), "b"))
	require.NoError(t, a.UnfollowAccount(context.Background(), "x"))

	assert.Equal(t, []string{"1", "7"}, ids(firstPage(t, c)))
}

func TestActions_FailedDeleteKeepsStatus(t *testing.T) {
	c, a, remote, _ := actionsFixture(t)
	remote.err = errors.New("forbidden")

	require.Error(t, a.Delete(context.Background(), "1"))
	_, ok := c.Item("1")
	assert.True(t, ok)
}

func TestActions_ViewToggles(t *testing.T) {
	c, a, _, _ := actionsFixture(t)

	require.NoError(t, a.SetExpanded("1", true))
	require.NoError(t, a.SetContentShown("1", false))
	require.NoError(t, a.SetContentCollapsed("1", false))

	v := itemByID(t, c, "1").View
	assert.Equal(t, domain.ViewState{Expanded: true, ContentShown: false, ContentCollapsed: false}, v)

	assert.ErrorIs(t, a.SetExpanded("missing", true), domain.ErrNotFound)
}

func TestActions_ActOnBoostedPostByItsOwnID(t *testing.T) {
	c, a, remote, _ := actionsFixture(t)

	require.NoError(t, a.Favourite(context.Background(), "20", true))
	require.NoError(t, a.SetExpanded("20", true))

	it := itemByID(t, c, "2")
	require.NotNil(t, it.Status.Reblog)
	assert.True(t, it.Status.Reblog.Favourited)
	assert.True(t, it.View.Expanded)
	assert.Equal(t, []string{"favourite 20"}, remote.calls)

	_, ok := c.Overrides().Get("2")
	assert.True(t, ok)
	_, ok = c.Overrides().Get("20")
	assert.False(t, ok)
}

func TestActions_ViewToggleCarriesStatusOverrideForward(t *testing.T) {
	c, a, _, _ := actionsFixture(t)
	edited := status("1", "a")
	edited.Content = "local edit"
	c.Override("1", Override{Status: &edited})

	require.NoError(t, a.SetExpanded("1", true))

	it := itemByID(t, c, "1")
	assert.Equal(t, "local edit", it.Status.Content)
	assert.True(t, it.View.Expanded)
}
